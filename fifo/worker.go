// File: fifo/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fifo

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-mpt/core/concurrency"
	"github.com/momentics/hioload-mpt/logger"
)

// runWorker drains the request queue until the running flag clears or a
// shutdown request of the current run arrives.
func (m *Manager) runWorker(id int) {
	log := m.log.With(zap.Int("worker", id))
	if m.opts.pin {
		m.pinWorker(id, log)
		defer m.unpinWorker(log)
	}
	gen := m.workers.Generation()
	idle := concurrency.NewIdler(m.opts.idle, m.waker, m.metrics.idleParks.Inc)
	defer idle.Close()

	log.Debug("bridge worker started")
	for m.workers.Running() {
		req, garbage, ok := m.requests.Dequeue()
		if !ok {
			idle.Idle()
			continue
		}
		m.requestEntries.Free(garbage)
		idle.Reset()

		if req.Kind == KindShutdown {
			own := req.Version == gen
			m.FreeRequest(req)
			if own {
				log.Debug("bridge worker received shutdown")
				return
			}
			// Leftover signal of an earlier run.
			continue
		}
		m.process(req)
		m.FreeRequest(req)
	}
	log.Debug("bridge worker observed stop flag")
}

func (m *Manager) process(req *Request) {
	start := time.Now()
	switch req.Kind {
	case KindFindValue, KindFindNode:
		m.processFind(req)
	case KindTraverse:
		m.processTraverse(req)
	default:
		m.metrics.drop(dropUnknownKind)
		m.log.Debug("dropping request of unknown kind",
			zap.Stringer("kind", req.Kind), zap.Stringer("id", req.ID))
		return
	}
	m.metrics.duration.WithLabelValues(req.Kind.String()).Observe(time.Since(start).Seconds())
}

func (m *Manager) pinWorker(id int, log logger.Logger) {
	if m.opts.affinity == nil || len(m.opts.cpus) == 0 {
		runtime.LockOSThread()
		return
	}
	cpu := m.opts.cpus[id%len(m.opts.cpus)]
	if err := m.opts.affinity.Pin(cpu); err != nil {
		log.Warn("worker pinning failed", zap.Int("cpu", cpu), zap.Error(err))
	}
}

func (m *Manager) unpinWorker(log logger.Logger) {
	if m.opts.affinity == nil || len(m.opts.cpus) == 0 {
		runtime.UnlockOSThread()
		return
	}
	if err := m.opts.affinity.Unpin(); err != nil {
		log.Warn("worker unpinning failed", zap.Error(err))
	}
}
