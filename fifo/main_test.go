package fifo

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/momentics/hioload-mpt/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const waitFor = 5 * time.Second

func newManager(t *testing.T, db api.Trie, opts ...Option) *Manager {
	t.Helper()
	m, err := New(db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		m.Destroy()
		forgetTraversals(m)
	})
	return m
}

func startManager(t *testing.T, db api.Trie, workers int, opts ...Option) *Manager {
	t.Helper()
	m := newManager(t, db, opts...)
	require.NoError(t, m.Start(workers))
	return m
}

// pollCompletions collects at least n Find completions.
func pollCompletions(t *testing.T, m *Manager, n int) []Completion {
	t.Helper()
	var out []Completion
	require.Eventually(t, func() bool {
		for c := m.PollCompletion(); c != nil; c = m.PollCompletion() {
			out = append(out, *c)
			m.FreeCompletion(c)
		}
		return len(out) >= n
	}, waitFor, time.Millisecond)
	return out
}

// traversed buffers polled traversal records by correlation id, so polling
// one stream leaves the others intact.
var traversed = struct {
	sync.Mutex
	byManager map[*Manager]map[CorrelationID][]Completion
}{byManager: map[*Manager]map[CorrelationID][]Completion{}}

func forgetTraversals(m *Manager) {
	traversed.Lock()
	delete(traversed.byManager, m)
	traversed.Unlock()
}

// pollTraversal collects traversal records of id up to and including its
// TraverseEnd. Records of other ids stay buffered for later calls.
func pollTraversal(t *testing.T, m *Manager, id CorrelationID) []Completion {
	t.Helper()
	traversed.Lock()
	defer traversed.Unlock()
	streams := traversed.byManager[m]
	if streams == nil {
		streams = map[CorrelationID][]Completion{}
		traversed.byManager[m] = streams
	}
	ended := func() bool {
		recs := streams[id]
		return len(recs) > 0 && recs[len(recs)-1].Status == StatusTraverseEnd
	}
	require.Eventually(t, func() bool {
		for c := m.PollTraverse(); c != nil; c = m.PollTraverse() {
			streams[c.ID] = append(streams[c.ID], *c)
			m.FreeTraverse(c)
		}
		return ended()
	}, waitFor, time.Millisecond)
	out := streams[id]
	delete(streams, id)
	return out
}

type largeCopy struct {
	ID      CorrelationID
	Payload []byte
}

func pollLargeValues(t *testing.T, m *Manager, n int) []largeCopy {
	t.Helper()
	var out []largeCopy
	require.Eventually(t, func() bool {
		for v := m.PollLargeValue(); v != nil; v = m.PollLargeValue() {
			out = append(out, largeCopy{ID: v.ID, Payload: append([]byte(nil), v.Payload...)})
			m.FreeLargeValue(v)
		}
		return len(out) >= n
	}, waitFor, time.Millisecond)
	return out
}

func id(n uint64) CorrelationID {
	return CorrelationID{Lo: n, Hi: ^n}
}
