// File: core/concurrency/mpmc_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unbounded lock-free MPMC FIFO (Michael-Scott) with explicit entries.

package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// MPMCQueue is an unbounded FIFO safe for any number of concurrent
// producers and consumers. Its head always points at a stub entry whose
// successor holds the oldest value.
type MPMCQueue[T any] struct {
	head atomic.Pointer[Entry[T]]
	_    cpu.CacheLinePad
	tail atomic.Pointer[Entry[T]]
	_    cpu.CacheLinePad
}

// NewMPMCQueue seeds the queue with stub, which becomes the first garbage
// entry handed back by Dequeue.
func NewMPMCQueue[T any](stub *Entry[T]) *MPMCQueue[T] {
	stub.next.Store(nil)
	q := &MPMCQueue[T]{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// Enqueue links e carrying val at the tail. It never blocks and never fails.
func (q *MPMCQueue[T]) Enqueue(e *Entry[T], val T) {
	e.value = val
	e.next.Store(nil)
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Help a lagging producer.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, e) {
			q.tail.CompareAndSwap(tail, e)
			return
		}
	}
}

// Dequeue removes the oldest value. On success it also returns the previous
// stub entry, which the caller must release to its allocator once.
func (q *MPMCQueue[T]) Dequeue() (val T, garbage *Entry[T], ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return val, nil, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if q.head.CompareAndSwap(head, next) {
			// next is the new stub; only the winner of the swap reads it.
			val = next.value
			var zero T
			next.value = zero
			return val, head, true
		}
	}
}

// IsEmpty is a racy hint for backoff decisions only.
func (q *MPMCQueue[T]) IsEmpty() bool {
	return q.head.Load().next.Load() == nil
}

// Drain dequeues every remaining value into fn, releases garbage to free
// and returns the number of values drained.
func (q *MPMCQueue[T]) Drain(fn func(T), free func(*Entry[T])) int {
	n := 0
	for {
		v, g, ok := q.Dequeue()
		if !ok {
			return n
		}
		if free != nil {
			free(g)
		}
		if fn != nil {
			fn(v)
		}
		n++
	}
}
