// File: fifo/join.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Joiner merges the completion, traverse and large-value queues into
// complete results on the caller side.

package fifo

import (
	"sync"

	"github.com/eapache/queue"
)

// Result is a completion with its value copied out of the bridge records.
type Result struct {
	ID            CorrelationID
	Status        ResultStatus
	Value         []byte
	PathOrHash    [PathHashSize]byte
	PathTruncated bool
}

type stream int

const (
	streamFind stream = iota
	streamTraverse
)

type heldKey struct {
	s  stream
	id CorrelationID
}

type pendingResult struct {
	res        Result
	needsValue bool
}

// maxPump bounds how many records one poll moves off a bridge queue.
const maxPump = 4096

// Joiner pairs sentinel completions with their large values, in whichever
// order the two arrive, and keeps the per-id order of a traversal stream.
// A correlation id must not be in flight on both streams at once.
// Joiner is safe for concurrent use; it frees every record it polls.
type Joiner struct {
	m *Manager

	mu    sync.Mutex
	large map[CorrelationID]*queue.Queue
	held  map[heldKey]*queue.Queue
	ready [2]*queue.Queue
}

// NewJoiner creates a joiner reading from m.
func NewJoiner(m *Manager) *Joiner {
	return &Joiner{
		m:     m,
		large: make(map[CorrelationID]*queue.Queue),
		held:  make(map[heldKey]*queue.Queue),
		ready: [2]*queue.Queue{queue.New(), queue.New()},
	}
}

// PollFind fills out with joined Find results and returns the count.
func (j *Joiner) PollFind(out []Result) int {
	return j.poll(streamFind, out)
}

// PollTraverse fills out with joined traversal results in stream order.
func (j *Joiner) PollTraverse(out []Result) int {
	return j.poll(streamTraverse, out)
}

// Pending returns the number of completions waiting for a value plus the
// number of values waiting for a completion.
func (j *Joiner) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, q := range j.held {
		n += q.Length()
	}
	for _, q := range j.large {
		n += q.Length()
	}
	return n
}

func (j *Joiner) poll(s stream, out []Result) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.pumpLarge()
	j.pump(s)

	n := 0
	for n < len(out) && j.ready[s].Length() > 0 {
		out[n] = j.ready[s].Remove().(Result)
		n++
	}
	return n
}

func (j *Joiner) pumpLarge() {
	for i := 0; i < maxPump; i++ {
		lv := j.m.PollLargeValue()
		if lv == nil {
			return
		}
		payload := append([]byte(nil), lv.Payload[:lv.Length]...)
		id := lv.ID
		j.m.FreeLargeValue(lv)

		q, ok := j.large[id]
		if !ok {
			q = queue.New()
			j.large[id] = q
		}
		q.Add(payload)
		j.release(heldKey{streamFind, id})
		j.release(heldKey{streamTraverse, id})
	}
}

func (j *Joiner) pump(s stream) {
	poll, free := j.m.PollCompletion, j.m.FreeCompletion
	if s == streamTraverse {
		poll, free = j.m.PollTraverse, j.m.FreeTraverse
	}
	for i := 0; i < maxPump; i++ {
		c := poll()
		if c == nil {
			return
		}
		p := &pendingResult{
			res: Result{
				ID:            c.ID,
				Status:        c.Status,
				PathOrHash:    c.PathOrHash,
				PathTruncated: c.PathTruncated(),
			},
			needsValue: c.HasLargeValue(),
		}
		if v := c.InlineValue(); len(v) > 0 {
			p.res.Value = append([]byte(nil), v...)
		}
		free(c)

		key := heldKey{s, p.res.ID}
		q, ok := j.held[key]
		if !ok {
			if !p.needsValue {
				j.ready[s].Add(p.res)
				continue
			}
			q = queue.New()
			j.held[key] = q
		}
		q.Add(p)
		j.release(key)
	}
}

// release moves the leading held results of key to ready while their
// values are available.
func (j *Joiner) release(key heldKey) {
	q, ok := j.held[key]
	if !ok {
		return
	}
	for q.Length() > 0 {
		p := q.Peek().(*pendingResult)
		if p.needsValue {
			lq, ok := j.large[key.id]
			if !ok || lq.Length() == 0 {
				return
			}
			p.res.Value = lq.Remove().([]byte)
			if lq.Length() == 0 {
				delete(j.large, key.id)
			}
		}
		q.Remove()
		j.ready[key.s].Add(p.res)
	}
	delete(j.held, key)
}
