// File: fifo/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fifo

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/core/concurrency"
	"github.com/momentics/hioload-mpt/logger"
)

const (
	defaultMetricsNamespace = "hioload_mpt"
	tracerName              = "github.com/momentics/hioload-mpt/fifo"
)

type options struct {
	logger       logger.Logger
	registerer   prometheus.Registerer
	tracer       trace.TracerProvider
	namespace    string
	entryLimit   int
	recordLimit  int
	slabCapacity int
	wakeTokens   int
	idle         concurrency.IdleConfig
	pin          bool
	affinity     api.Affinity
	cpus         []int
}

func defaultOptions() options {
	return options{
		logger:     logger.NewNoopLogger(),
		tracer:     otel.GetTracerProvider(),
		namespace:  defaultMetricsNamespace,
		wakeTokens: 64,
		idle:       concurrency.DefaultIdleConfig(),
	}
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the noop logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer registers bridge metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithTracerProvider sets where processor spans go. Nil keeps the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp
		}
	}
}

// WithMetricsNamespace overrides the metric namespace.
func WithMetricsNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithEntryLimit caps live queue entries per allocator. Zero is unbounded.
func WithEntryLimit(n int) Option {
	return func(o *options) { o.entryLimit = n }
}

// WithRecordLimit caps live records per record kind. Zero is unbounded.
func WithRecordLimit(n int) Option {
	return func(o *options) { o.recordLimit = n }
}

// WithSlabCapacity sets how many idle records each pool keeps.
func WithSlabCapacity(n int) Option {
	return func(o *options) { o.slabCapacity = n }
}

// WithIdle tunes how workers yield and park on an empty queue.
func WithIdle(cfg concurrency.IdleConfig) Option {
	return func(o *options) { o.idle = cfg }
}

// WithPinning locks each worker to an OS thread and, when aff is set and
// cpus is not empty, binds worker i to cpus[i%len(cpus)].
func WithPinning(aff api.Affinity, cpus ...int) Option {
	return func(o *options) {
		o.pin = true
		o.affinity = aff
		o.cpus = append([]int(nil), cpus...)
	}
}
