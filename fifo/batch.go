// File: fifo/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Batch forms of the caller operations. A submitted batch wakes the
// workers once instead of once per request.

package fifo

import (
	"fmt"

	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/core/concurrency"
)

// AllocRequestBatch fills out with fresh requests and returns how many were
// allocated; it stops early when records are exhausted.
func (m *Manager) AllocRequestBatch(out []*Request) int {
	for i := range out {
		r := m.AllocRequest()
		if r == nil {
			return i
		}
		out[i] = r
	}
	return len(out)
}

// FreeRequestBatch releases requests that were never submitted.
func (m *Manager) FreeRequestBatch(reqs []*Request) {
	for _, r := range reqs {
		m.FreeRequest(r)
	}
}

// SubmitBatch submits every non-nil request and returns how many were
// accepted. Requests that could not be queued are freed.
func (m *Manager) SubmitBatch(reqs []*Request) (int, error) {
	m.destroyMu.RLock()
	defer m.destroyMu.RUnlock()
	if m.destroyed.Load() {
		for _, r := range reqs {
			if r != nil {
				m.FreeRequest(r)
				m.metrics.drop(dropClosed)
			}
		}
		return 0, api.ErrClosed
	}
	var n, want int
	for _, r := range reqs {
		if r == nil {
			continue
		}
		want++
		if m.enqueueRequest(r) {
			n++
		}
	}
	switch {
	case n == 1:
		m.waker.Notify()
	case n > 1:
		m.waker.Broadcast()
	}
	if n < want {
		return n, fmt.Errorf("fifo submit batch: %d of %d dropped: %w", want-n, want, concurrency.ErrEntriesExhausted)
	}
	return n, nil
}

// PollCompletionBatch moves up to len(out) Find completions into out.
func (m *Manager) PollCompletionBatch(out []*Completion) int {
	return pollInto(out, m.PollCompletion)
}

// FreeCompletionBatch releases polled Find completions.
func (m *Manager) FreeCompletionBatch(cs []*Completion) {
	for _, c := range cs {
		m.FreeCompletion(c)
	}
}

// PollTraverseBatch moves up to len(out) traversal records into out.
func (m *Manager) PollTraverseBatch(out []*Completion) int {
	return pollInto(out, m.PollTraverse)
}

// FreeTraverseBatch releases polled traversal records.
func (m *Manager) FreeTraverseBatch(cs []*Completion) {
	for _, c := range cs {
		m.FreeTraverse(c)
	}
}

// PollLargeValueBatch moves up to len(out) large values into out.
func (m *Manager) PollLargeValueBatch(out []*LargeValue) int {
	return pollInto(out, m.PollLargeValue)
}

// FreeLargeValueBatch releases polled large values.
func (m *Manager) FreeLargeValueBatch(vs []*LargeValue) {
	for _, v := range vs {
		m.FreeLargeValue(v)
	}
}

func pollInto[T any](out []*T, poll func() *T) int {
	for i := range out {
		v := poll()
		if v == nil {
			return i
		}
		out[i] = v
	}
	return len(out)
}
