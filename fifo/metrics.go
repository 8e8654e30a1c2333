// File: fifo/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fifo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dropRequestEntry    = "request_entry"
	dropCompletion      = "completion"
	dropLargeValue      = "large_value"
	dropValueTooLarge   = "value_too_large"
	dropShutdownSignal  = "shutdown_signal"
	dropClosed          = "closed"
	dropUnknownKind     = "unknown_kind"
	dropMalformedKey    = "malformed_key"
	queueCompletion     = "completion"
	queueTraverse       = "traverse"
	subsystemBridgeFIFO = "fifo"
)

// Metrics groups the bridge collectors.
type Metrics struct {
	submitted   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	completions *prometheus.CounterVec
	largeValues prometheus.Counter
	idleParks   prometheus.Counter
	workers     prometheus.Gauge
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		submitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "requests_submitted_total",
			Help:      "The total number of requests accepted by the request queue.",
		}, []string{"kind"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "requests_dropped_total",
			Help:      "The total number of records dropped, by reason.",
		}, []string{"reason"}),
		completions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "completions_total",
			Help:      "The total number of completion records posted.",
		}, []string{"queue", "status"}),
		largeValues: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "large_values_total",
			Help:      "The total number of values delivered out of band.",
		}),
		idleParks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "worker_idle_parks_total",
			Help:      "The total number of times a worker parked on an empty request queue.",
		}),
		workers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "workers_running",
			Help:      "The number of running bridge workers.",
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemBridgeFIFO,
			Name:      "request_duration_seconds",
			Help:      "Time spent by a worker processing one request.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"kind"}),
	}
}

func (m *Metrics) drop(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}
