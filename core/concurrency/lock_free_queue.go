// File: core/concurrency/lock_free_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded MPMC queue with per-cell sequence numbers (Vyukov).
// Backs the record free lists in package pool.

package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-mpt/api"
)

// LockFreeQueue is a bounded MPMC queue using sequence numbers to order
// producers and consumers on each cell.
type LockFreeQueue[T any] struct {
	head  atomic.Uint64
	_     cpu.CacheLinePad
	tail  atomic.Uint64
	_     cpu.CacheLinePad
	mask  uint64
	cells []cell[T]
}

type cell[T any] struct {
	sequence atomic.Uint64
	data     T
}

var _ api.Ring[int] = (*LockFreeQueue[int])(nil)

// NewLockFreeQueue creates a new queue with capacity rounded to power of two.
func NewLockFreeQueue[T any](capacity int) *LockFreeQueue[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}

	q := &LockFreeQueue[T]{
		mask:  uint64(size - 1),
		cells: make([]cell[T], size),
	}
	for i := range q.cells {
		q.cells[i].sequence.Store(uint64(i))
	}
	return q
}

// Enqueue adds val; returns false if full.
func (q *LockFreeQueue[T]) Enqueue(val T) bool {
	for {
		tail := q.tail.Load()
		c := &q.cells[tail&q.mask]
		dif := int64(c.sequence.Load()) - int64(tail)

		switch {
		case dif == 0:
			if q.tail.CompareAndSwap(tail, tail+1) {
				c.data = val
				c.sequence.Store(tail + 1)
				return true
			}
		case dif < 0:
			return false
		}
	}
}

// Dequeue removes and returns an item; ok false if empty.
func (q *LockFreeQueue[T]) Dequeue() (item T, ok bool) {
	for {
		head := q.head.Load()
		c := &q.cells[head&q.mask]
		dif := int64(c.sequence.Load()) - int64(head+1)

		switch {
		case dif == 0:
			if q.head.CompareAndSwap(head, head+1) {
				item = c.data
				var zero T
				c.data = zero
				c.sequence.Store(head + q.mask + 1)
				return item, true
			}
		case dif < 0:
			var zero T
			return zero, false
		}
	}
}

// Len returns an approximate item count.
func (q *LockFreeQueue[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// Cap returns the rounded capacity.
func (q *LockFreeQueue[T]) Cap() int {
	return len(q.cells)
}
