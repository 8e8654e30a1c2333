// File: facade/hioload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bridge wires configuration, logging, metrics, CPU pinning and the query
// bridge behind one type.

package facade

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-mpt/affinity"
	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/control"
	"github.com/momentics/hioload-mpt/fifo"
	"github.com/momentics/hioload-mpt/logger"
)

// Bridge is the assembled query bridge over one trie.
type Bridge struct {
	config   *control.Config
	log      *logger.ZapLogger
	metrics  *control.MetricsRegistry
	affinity api.Affinity
	manager  *fifo.Manager
	joiner   *fifo.Joiner

	mu      sync.Mutex
	started bool
}

var _ api.GracefulShutdown = (*Bridge)(nil)

// Option overrides a component New would otherwise build from the config.
type Option func(*Bridge)

// WithLogger replaces the logger built from LogFormat and LogLevel.
func WithLogger(l *logger.ZapLogger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithMetricsRegistry replaces the private metrics registry.
func WithMetricsRegistry(r *control.MetricsRegistry) Option {
	return func(b *Bridge) { b.metrics = r }
}

// WithAffinity replaces the CPU pinner used when PinWorkers is set.
func WithAffinity(a api.Affinity) Option {
	return func(b *Bridge) { b.affinity = a }
}

// New validates cfg and builds a stopped bridge over db. A nil cfg selects
// control.DefaultConfig.
func New(db api.Trie, cfg *control.Config, opts ...Option) (*Bridge, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("facade config: %w", err)
	}
	b := &Bridge{config: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		l, err := logger.NewLogger(cfg.LogFormat, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("facade logger: %w", err)
		}
		b.log = l
	}
	if b.metrics == nil {
		b.metrics = control.NewMetricsRegistry(true)
	}

	fopts := []fifo.Option{
		fifo.WithLogger(b.log),
		fifo.WithRegisterer(b.metrics.Registerer()),
		fifo.WithMetricsNamespace(cfg.MetricsNamespace),
		fifo.WithEntryLimit(cfg.MaxEntries),
		fifo.WithRecordLimit(cfg.MaxRecords),
		fifo.WithSlabCapacity(cfg.SlabCapacity),
		fifo.WithIdle(cfg.Idle()),
	}
	if cfg.PinWorkers {
		if b.affinity == nil {
			b.affinity = affinity.New()
		}
		fopts = append(fopts, fifo.WithPinning(b.affinity, cfg.CPUs...))
	}
	m, err := fifo.New(db, fopts...)
	if err != nil {
		return nil, fmt.Errorf("facade bridge: %w", err)
	}
	b.manager = m
	b.joiner = fifo.NewJoiner(m)
	return b, nil
}

// Start launches the configured number of workers. Calling Start on a
// started bridge has no effect.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	if err := b.manager.Start(b.config.Workers); err != nil {
		return err
	}
	b.started = true
	return nil
}

// Stop stops the workers and keeps queued records. Stop on a stopped
// bridge is a no-op.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil
	}
	b.manager.Stop()
	b.started = false
	return nil
}

// Shutdown stops the bridge, frees every queued record and flushes the log.
func (b *Bridge) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manager.Destroy()
	b.started = false
	// Syncing a console logger on a terminal fails with ENOTTY.
	_ = b.log.Sync()
	return nil
}

// Manager returns the underlying bridge for submissions and raw polling.
func (b *Bridge) Manager() *fifo.Manager { return b.manager }

// Joiner returns the joiner over the bridge queues.
func (b *Bridge) Joiner() *fifo.Joiner { return b.joiner }

// Logger returns the bridge logger.
func (b *Bridge) Logger() *logger.ZapLogger { return b.log }

// Metrics returns the registry holding the bridge collectors.
func (b *Bridge) Metrics() *control.MetricsRegistry { return b.metrics }

// Config returns the configuration the bridge was built with.
func (b *Bridge) Config() *control.Config { return b.config }

// Stats combines allocator counters, a metrics snapshot and the probe dump.
type Stats struct {
	Bridge  fifo.Stats
	Metrics map[string]float64
	Probes  map[string]any
}

// Stats gathers the current bridge state.
func (b *Bridge) Stats() (Stats, error) {
	snap, err := b.metrics.GetSnapshot()
	if err != nil {
		return Stats{}, fmt.Errorf("facade stats: %w", err)
	}
	return Stats{
		Bridge:  b.manager.Stats(),
		Metrics: snap,
		Probes:  b.manager.DumpState(),
	}, nil
}

// Watch registers the bridge reload hook with w. Only the log level is
// applied at runtime; resizing pools or workers needs a new bridge.
func (b *Bridge) Watch(w *control.Watcher) {
	w.OnReload(b.reload)
}

func (b *Bridge) reload(prev, next *control.Config) {
	if prev.LogLevel == next.LogLevel {
		return
	}
	if err := b.log.SetLevel(next.LogLevel); err != nil {
		b.log.Warn("log level not applied", zap.String("level", next.LogLevel), zap.Error(err))
		return
	}
	b.log.Info("log level changed", zap.String("from", prev.LogLevel), zap.String("to", next.LogLevel))
}
