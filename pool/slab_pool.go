// File: pool/slab_pool.go
// Package pool implements lock-free record pools and payload buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/core/concurrency"
)

// DefaultSlabCapacity is the free list size used when none is given.
const DefaultSlabCapacity = 4096

// Slab recycles fixed-size records through a bounded lock-free free list.
// Records are handed between goroutines by single ownership transfer, so a
// record returned by Put is never visible to its previous owner again.
type Slab[T any] struct {
	free  *concurrency.LockFreeQueue[*T]
	reset func(*T)
	limit int64

	live       atomic.Int64
	totalAlloc atomic.Uint64
	totalFree  atomic.Uint64
	exhausted  atomic.Uint64
}

var _ api.ObjectPool[*int] = (*Slab[int])(nil)

// NewSlab creates a pool keeping up to capacity idle records. limit caps
// the records checked out at once; zero or less means unbounded. reset,
// if set, runs on every record returned through Put.
func NewSlab[T any](capacity, limit int, reset func(*T)) *Slab[T] {
	if capacity <= 0 {
		capacity = DefaultSlabCapacity
	}
	return &Slab[T]{
		free:  concurrency.NewLockFreeQueue[*T](capacity),
		reset: reset,
		limit: int64(limit),
	}
}

// Get returns a zeroed record, or nil when the live limit is reached.
func (s *Slab[T]) Get() *T {
	if n := s.live.Add(1); s.limit > 0 && n > s.limit {
		s.live.Add(-1)
		s.exhausted.Add(1)
		return nil
	}
	s.totalAlloc.Add(1)
	if rec, ok := s.free.Dequeue(); ok {
		return rec
	}
	return new(T)
}

// Put returns rec to the pool. Nil is ignored.
func (s *Slab[T]) Put(rec *T) {
	if rec == nil {
		return
	}
	if s.reset != nil {
		s.reset(rec)
	} else {
		var zero T
		*rec = zero
	}
	s.live.Add(-1)
	s.totalFree.Add(1)
	// Pool full: the collector takes the record.
	s.free.Enqueue(rec)
}

// Stats returns allocation counters.
func (s *Slab[T]) Stats() api.PoolStats {
	return api.PoolStats{
		TotalAlloc: int64(s.totalAlloc.Load()),
		TotalFree:  int64(s.totalFree.Load()),
		InUse:      s.live.Load(),
		Exhausted:  int64(s.exhausted.Load()),
	}
}

// Idle returns the approximate number of pooled records.
func (s *Slab[T]) Idle() int {
	return s.free.Len()
}
