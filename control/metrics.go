// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus registry with a flat snapshot view.

package control

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
)

// MetricsRegistry owns a private prometheus registry.
type MetricsRegistry struct {
	reg *prometheus.Registry

	mu      sync.RWMutex
	updated time.Time
}

// NewMetricsRegistry creates a registry. With runtime set it also carries
// the Go runtime and process collectors.
func NewMetricsRegistry(runtime bool) *MetricsRegistry {
	reg := prometheus.NewRegistry()
	if runtime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return &MetricsRegistry{reg: reg}
}

// Registerer is where components register their collectors.
func (mr *MetricsRegistry) Registerer() prometheus.Registerer { return mr.reg }

// Gatherer exposes the registry to an exporter.
func (mr *MetricsRegistry) Gatherer() prometheus.Gatherer { return mr.reg }

// GetSnapshot gathers every counter, gauge and untyped sample keyed by
// name{label="value",...}. Histograms and summaries contribute their
// _count and _sum series.
func (mr *MetricsRegistry) GetSnapshot() (map[string]float64, error) {
	families, err := mr.reg.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			labels := labelString(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[name+labels] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[name+labels] = m.GetGauge().GetValue()
			case dto.MetricType_UNTYPED:
				out[name+labels] = m.GetUntyped().GetValue()
			case dto.MetricType_HISTOGRAM:
				out[name+"_count"+labels] = float64(m.GetHistogram().GetSampleCount())
				out[name+"_sum"+labels] = m.GetHistogram().GetSampleSum()
			case dto.MetricType_SUMMARY:
				out[name+"_count"+labels] = float64(m.GetSummary().GetSampleCount())
				out[name+"_sum"+labels] = m.GetSummary().GetSampleSum()
			}
		}
	}
	mr.mu.Lock()
	mr.updated = time.Now()
	mr.mu.Unlock()
	return out, nil
}

// Updated returns when the last snapshot was taken.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+`="`+p.GetValue()+`"`)
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
