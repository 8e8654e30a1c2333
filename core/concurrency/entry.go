// File: core/concurrency/entry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Link nodes of MPMCQueue and their allocator.

package concurrency

import (
	"sync/atomic"

	"github.com/momentics/hioload-mpt/api"
)

// Entry is an intrusive link node of MPMCQueue. It is owned by the queue
// between Enqueue and the Dequeue that hands it back as garbage.
type Entry[T any] struct {
	next  atomic.Pointer[Entry[T]]
	value T
}

// EntryAllocator hands out queue entries and accounts for released garbage.
//
// Released entries are never reused: a stale dequeuer may still hold a
// pointer to a garbage entry and read its next link. The collector reclaims
// entries once no such reader remains, which removes the need for hazard
// pointers or epochs while keeping the alloc/free discipline explicit.
type EntryAllocator[T any] struct {
	limit      int64
	seeded     atomic.Int64
	live       atomic.Int64
	totalAlloc atomic.Uint64
	totalFree  atomic.Uint64
	exhausted  atomic.Uint64
}

// NewEntryAllocator creates an allocator capped at limit live entries.
// A limit of zero or less means unbounded.
func NewEntryAllocator[T any](limit int) *EntryAllocator[T] {
	return &EntryAllocator[T]{limit: int64(limit)}
}

// Seed returns a queue stub entry. Stubs count as live but never against
// the limit.
func (a *EntryAllocator[T]) Seed() *Entry[T] {
	a.seeded.Add(1)
	a.live.Add(1)
	a.totalAlloc.Add(1)
	return &Entry[T]{}
}

// Alloc returns a fresh entry, or nil when the live cap is reached.
func (a *EntryAllocator[T]) Alloc() *Entry[T] {
	if n := a.live.Add(1); a.limit > 0 && n-a.seeded.Load() > a.limit {
		a.live.Add(-1)
		a.exhausted.Add(1)
		return nil
	}
	a.totalAlloc.Add(1)
	return &Entry[T]{}
}

// Free releases an entry previously returned as garbage. Nil is ignored.
func (a *EntryAllocator[T]) Free(e *Entry[T]) {
	if e == nil {
		return
	}
	a.live.Add(-1)
	a.totalFree.Add(1)
}

// Stats returns allocation counters.
func (a *EntryAllocator[T]) Stats() api.PoolStats {
	return api.PoolStats{
		TotalAlloc: int64(a.totalAlloc.Load()),
		TotalFree:  int64(a.totalFree.Load()),
		InUse:      a.live.Load(),
		Exhausted:  int64(a.exhausted.Load()),
	}
}
