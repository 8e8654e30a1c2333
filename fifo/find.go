// File: fifo/find.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fifo

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/momentics/hioload-mpt/api"
)

// processFind resolves one key and posts exactly one completion, unless no
// completion record can be reserved.
func (m *Manager) processFind(req *Request) {
	ctx, span := m.tracer.Start(context.Background(), "fifo.find", trace.WithAttributes(
		attribute.String("kind", req.Kind.String()),
		attribute.Int64("version", int64(req.Version)),
	))
	defer span.End()

	c, e := m.newCompletion()
	if c == nil {
		span.SetStatus(codes.Error, "completion exhausted")
		return
	}
	c.ID = req.ID
	c.Status = m.find(ctx, req, c)
	span.SetAttributes(attribute.String("status", c.Status.String()))
	m.postCompletion(m.completions, e, c, queueCompletion)
}

func (m *Manager) find(ctx context.Context, req *Request, c *Completion) (status ResultStatus) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("trie find panicked",
				zap.Stringer("id", req.ID), zap.String("panic", fmt.Sprint(r)))
			c.ValueLen = 0
			c.PathOrHash = [PathHashSize]byte{}
			status = StatusError
		}
	}()

	key, ok := req.keyNibbles()
	if !ok {
		m.metrics.drop(dropMalformedKey)
		return StatusError
	}
	node, err := m.db.Find(ctx, key, req.Version)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return StatusNotFound
		}
		m.log.Debug("trie find failed", zap.Stringer("id", req.ID), zap.Error(err))
		return StatusError
	}
	if node == nil || !node.HasValue() {
		return StatusNotFound
	}
	if req.Kind == KindFindNode {
		// Only 32-byte tags are copied; anything else leaves the field zeroed.
		if d := node.Data(); len(d) == PathHashSize {
			copy(c.PathOrHash[:], d)
		}
	}
	if !m.attachValue(req.ID, node.Value(), c) {
		c.PathOrHash = [PathHashSize]byte{}
		return StatusError
	}
	return StatusOK
}
