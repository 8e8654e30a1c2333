// File: fifo/manager.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Manager owns the four bridge queues, their record pools and the worker
// pool. Callers allocate and submit requests, then poll completions, all
// without blocking.

package fifo

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/control"
	"github.com/momentics/hioload-mpt/core/concurrency"
	"github.com/momentics/hioload-mpt/logger"
	"github.com/momentics/hioload-mpt/pool"
)

// Manager is the query bridge over a Trie.
type Manager struct {
	db      api.Trie
	opts    options
	log     logger.Logger
	metrics *Metrics
	probes  *control.DebugProbes
	tracer  trace.Tracer

	requests    *concurrency.MPMCQueue[*Request]
	completions *concurrency.MPMCQueue[*Completion]
	traverses   *concurrency.MPMCQueue[*Completion]
	largeValues *concurrency.MPMCQueue[*LargeValue]

	requestEntries    *concurrency.EntryAllocator[*Request]
	completionEntries *concurrency.EntryAllocator[*Completion]
	largeEntries      *concurrency.EntryAllocator[*LargeValue]

	requestPool    *pool.Slab[Request]
	completionPool *pool.Slab[Completion]
	largePool      *pool.Slab[LargeValue]
	payloads       *pool.BytePool

	workers *concurrency.WorkerPool
	waker   *concurrency.Waker

	destroyMu sync.RWMutex
	destroyed atomic.Bool
}

var _ api.GracefulShutdown = (*Manager)(nil)

// New creates a stopped bridge over db. Each queue is seeded with its
// stub entry, which is allocated outside the configured entry limit.
func New(db api.Trie, opts ...Option) (*Manager, error) {
	if db == nil {
		return nil, api.ErrNilTrie
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{
		db:      db,
		opts:    o,
		log:     o.logger,
		metrics: NewMetrics(o.registerer, o.namespace),
		probes:  control.NewDebugProbes(),
		tracer:  o.tracer.Tracer(tracerName),

		requestEntries:    concurrency.NewEntryAllocator[*Request](o.entryLimit),
		completionEntries: concurrency.NewEntryAllocator[*Completion](o.entryLimit),
		largeEntries:      concurrency.NewEntryAllocator[*LargeValue](o.entryLimit),

		requestPool:    pool.NewSlab[Request](o.slabCapacity, o.recordLimit, nil),
		completionPool: pool.NewSlab[Completion](o.slabCapacity, o.recordLimit, nil),
		largePool:      pool.NewSlab[LargeValue](o.slabCapacity, o.recordLimit, nil),
		payloads:       pool.NewBytePool(),

		waker: concurrency.NewWaker(o.wakeTokens),
	}
	m.requests = concurrency.NewMPMCQueue(m.requestEntries.Seed())
	m.completions = concurrency.NewMPMCQueue(m.completionEntries.Seed())
	m.traverses = concurrency.NewMPMCQueue(m.completionEntries.Seed())
	m.largeValues = concurrency.NewMPMCQueue(m.largeEntries.Seed())
	m.workers = concurrency.NewWorkerPool(func(r *panics.Recovered) {
		m.log.Error("bridge worker panicked", zap.String("panic", r.String()))
	})
	m.registerProbes()
	return m, nil
}

// Start launches n workers; zero starts one. Calling Start on a running
// bridge is a no-op.
func (m *Manager) Start(n int) error {
	if m.destroyed.Load() {
		return api.ErrClosed
	}
	started, err := m.workers.Start(n, m.runWorker)
	if err != nil {
		return fmt.Errorf("fifo start: %w", err)
	}
	if started {
		size := m.workers.Size()
		m.metrics.workers.Set(float64(size))
		m.log.Info("bridge started", zap.Int("workers", size))
	}
	return nil
}

// Stop clears the running flag, posts one shutdown request per worker and
// waits for every worker to exit. Requests still queued stay queued.
func (m *Manager) Stop() {
	stopped := m.workers.Stop(func(n int) {
		gen := m.workers.Generation()
		for i := 0; i < n; i++ {
			// Workers also exit on the flag, so a lost signal is fine.
			if !m.postShutdown(gen) {
				m.metrics.drop(dropShutdownSignal)
			}
		}
		m.waker.Broadcast()
	})
	if stopped {
		m.metrics.workers.Set(0)
		m.log.Info("bridge stopped")
	}
}

func (m *Manager) postShutdown(gen uint64) bool {
	req := m.requestPool.Get()
	if req == nil {
		return false
	}
	req.Kind = KindShutdown
	req.Version = gen
	e := m.requestEntries.Alloc()
	if e == nil {
		m.requestPool.Put(req)
		return false
	}
	m.requests.Enqueue(e, req)
	return true
}

// Running reports whether workers are running.
func (m *Manager) Running() bool {
	return m.workers.Running()
}

// Destroy stops the bridge and frees every record left in its queues.
// It is safe to call more than once, with or without a prior Start.
func (m *Manager) Destroy() {
	m.destroyMu.Lock()
	defer m.destroyMu.Unlock()
	if m.destroyed.Load() {
		return
	}
	m.Stop()
	m.destroyed.Store(true)

	n := m.requests.Drain(m.FreeRequest, m.requestEntries.Free)
	n += m.completions.Drain(m.FreeCompletion, m.completionEntries.Free)
	n += m.traverses.Drain(m.FreeTraverse, m.completionEntries.Free)
	n += m.largeValues.Drain(m.FreeLargeValue, m.largeEntries.Free)
	m.log.Info("bridge destroyed", zap.Int("drained", n))
}

// Shutdown implements api.GracefulShutdown.
func (m *Manager) Shutdown() error {
	m.Destroy()
	return nil
}

// AllocRequest returns a zeroed request, or nil when records are exhausted.
func (m *Manager) AllocRequest() *Request {
	return m.requestPool.Get()
}

// FreeRequest returns a request that was never submitted.
func (m *Manager) FreeRequest(req *Request) {
	m.requestPool.Put(req)
}

// Submit hands req to the workers. On error the request has already been
// freed and must not be reused.
func (m *Manager) Submit(req *Request) error {
	if req == nil {
		return api.ErrInvalidArgument
	}
	// Destroy drains under the write lock.
	m.destroyMu.RLock()
	defer m.destroyMu.RUnlock()
	if m.destroyed.Load() {
		m.FreeRequest(req)
		m.metrics.drop(dropClosed)
		return api.ErrClosed
	}
	if !m.enqueueRequest(req) {
		return fmt.Errorf("fifo submit: %w", concurrency.ErrEntriesExhausted)
	}
	m.waker.Notify()
	return nil
}

func (m *Manager) enqueueRequest(req *Request) bool {
	e := m.requestEntries.Alloc()
	if e == nil {
		m.FreeRequest(req)
		m.metrics.drop(dropRequestEntry)
		return false
	}
	kind := req.Kind.String()
	m.requests.Enqueue(e, req)
	m.metrics.submitted.WithLabelValues(kind).Inc()
	return true
}

// SubmitFind allocates, fills and submits a FindValue or FindNode request.
func (m *Manager) SubmitFind(id CorrelationID, kind RequestKind, key []byte, version uint64) error {
	if kind != KindFindValue && kind != KindFindNode {
		return api.ErrInvalidArgument.WithContext("kind", kind.String())
	}
	return m.submitWith(id, kind, key, version, 0)
}

// SubmitTraverse allocates, fills and submits a Traverse request. A zero
// limit selects DefaultTraverseLimit.
func (m *Manager) SubmitTraverse(id CorrelationID, prefix []byte, version uint64, limit uint32) error {
	return m.submitWith(id, KindTraverse, prefix, version, limit)
}

func (m *Manager) submitWith(id CorrelationID, kind RequestKind, key []byte, version uint64, limit uint32) error {
	req := m.AllocRequest()
	if req == nil {
		return fmt.Errorf("fifo submit: %w", api.ErrResourceExhausted)
	}
	if err := req.SetKey(key); err != nil {
		m.FreeRequest(req)
		return fmt.Errorf("fifo submit: %w", err)
	}
	req.ID = id
	req.Kind = kind
	req.Version = version
	req.TraverseLimit = limit
	return m.Submit(req)
}

// PollCompletion returns the next Find completion, or nil.
func (m *Manager) PollCompletion() *Completion {
	c, g, ok := m.completions.Dequeue()
	if !ok {
		return nil
	}
	m.completionEntries.Free(g)
	return c
}

// FreeCompletion releases a polled Find completion.
func (m *Manager) FreeCompletion(c *Completion) {
	m.completionPool.Put(c)
}

// PollTraverse returns the next traversal record, or nil.
func (m *Manager) PollTraverse() *Completion {
	c, g, ok := m.traverses.Dequeue()
	if !ok {
		return nil
	}
	m.completionEntries.Free(g)
	return c
}

// FreeTraverse releases a polled traversal record.
func (m *Manager) FreeTraverse(c *Completion) {
	m.completionPool.Put(c)
}

// PollLargeValue returns the next out-of-band value, or nil.
func (m *Manager) PollLargeValue() *LargeValue {
	v, g, ok := m.largeValues.Dequeue()
	if !ok {
		return nil
	}
	m.largeEntries.Free(g)
	return v
}

// FreeLargeValue releases a polled large value and its payload.
func (m *Manager) FreeLargeValue(v *LargeValue) {
	if v == nil {
		return
	}
	m.payloads.Release(v.Payload)
	m.largePool.Put(v)
}

// Stats is a point-in-time view of the bridge allocators.
type Stats struct {
	Running           bool
	Workers           int
	RequestEntries    api.PoolStats
	CompletionEntries api.PoolStats
	LargeValueEntries api.PoolStats
	Requests          api.PoolStats
	Completions       api.PoolStats
	LargeValues       api.PoolStats
}

// Stats returns allocator counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Running:           m.workers.Running(),
		Workers:           m.workers.Size(),
		RequestEntries:    m.requestEntries.Stats(),
		CompletionEntries: m.completionEntries.Stats(),
		LargeValueEntries: m.largeEntries.Stats(),
		Requests:          m.requestPool.Stats(),
		Completions:       m.completionPool.Stats(),
		LargeValues:       m.largePool.Stats(),
	}
}

// Probes exposes the debug probe registry so callers can add their own.
func (m *Manager) Probes() *control.DebugProbes {
	return m.probes
}

// DumpState evaluates every registered probe.
func (m *Manager) DumpState() map[string]any {
	return m.probes.DumpState()
}

func (m *Manager) registerProbes() {
	control.RegisterPlatformProbes(m.probes)
	m.probes.RegisterProbe("fifo.running", func() any { return m.workers.Running() })
	m.probes.RegisterProbe("fifo.workers", func() any { return m.workers.Size() })
	m.probes.RegisterProbe("fifo.requests.empty", func() any { return m.requests.IsEmpty() })
	m.probes.RegisterProbe("fifo.completions.empty", func() any { return m.completions.IsEmpty() })
	m.probes.RegisterProbe("fifo.traverses.empty", func() any { return m.traverses.IsEmpty() })
	m.probes.RegisterProbe("fifo.large_values.empty", func() any { return m.largeValues.IsEmpty() })
	m.probes.RegisterProbe("fifo.entries.in_use", func() any {
		return m.requestEntries.Stats().InUse + m.completionEntries.Stats().InUse + m.largeEntries.Stats().InUse
	})
	m.probes.RegisterProbe("fifo.records.in_use", func() any {
		return m.requestPool.Stats().InUse + m.completionPool.Stats().InUse + m.largePool.Stats().InUse
	})
}
