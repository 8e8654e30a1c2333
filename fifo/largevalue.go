// File: fifo/largevalue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Completion construction and the out-of-band value channel.

package fifo

import (
	"math"

	"github.com/momentics/hioload-mpt/core/concurrency"
)

// newCompletion reserves a record together with its queue entry so that a
// completion, once built, can always be posted.
func (m *Manager) newCompletion() (*Completion, *concurrency.Entry[*Completion]) {
	c := m.completionPool.Get()
	if c == nil {
		m.metrics.drop(dropCompletion)
		return nil, nil
	}
	e := m.completionEntries.Alloc()
	if e == nil {
		m.completionPool.Put(c)
		m.metrics.drop(dropCompletion)
		return nil, nil
	}
	return c, e
}

// discardCompletion undoes newCompletion for a record that is not posted.
func (m *Manager) discardCompletion(c *Completion, e *concurrency.Entry[*Completion]) {
	m.completionEntries.Free(e)
	m.completionPool.Put(c)
}

func (m *Manager) postCompletion(q *concurrency.MPMCQueue[*Completion], e *concurrency.Entry[*Completion], c *Completion, queue string) {
	status := c.Status.String()
	q.Enqueue(e, c)
	m.metrics.completions.WithLabelValues(queue, status).Inc()
}

// attachValue stores v in c, inline when it fits and on the large-value
// queue otherwise. The large value is queued before c is posted. It
// reports false when v cannot be delivered.
func (m *Manager) attachValue(id CorrelationID, v []byte, c *Completion) bool {
	if len(v) <= InlineValueCapacity {
		c.ValueLen = uint32(len(v))
		copy(c.Value[:], v)
		return true
	}
	if int64(len(v)) > math.MaxUint32 {
		m.metrics.drop(dropValueTooLarge)
		return false
	}
	if !m.postLargeValue(id, v) {
		return false
	}
	c.ValueLen = LargeValueSentinel
	return true
}

func (m *Manager) postLargeValue(id CorrelationID, v []byte) bool {
	lv := m.largePool.Get()
	if lv == nil {
		m.metrics.drop(dropLargeValue)
		return false
	}
	e := m.largeEntries.Alloc()
	if e == nil {
		m.largePool.Put(lv)
		m.metrics.drop(dropLargeValue)
		return false
	}
	lv.ID = id
	lv.Length = uint32(len(v))
	lv.Payload = m.payloads.Acquire(len(v))
	copy(lv.Payload, v)
	m.largeValues.Enqueue(e, lv)
	m.metrics.largeValues.Inc()
	return true
}
