// File: fifo/traverse.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fifo

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/momentics/hioload-mpt/api"
)

// processTraverse streams TraverseMore records for the subtree under the
// request prefix and always finishes with one TraverseEnd. The end record
// is reserved up front; if that fails the request produces nothing.
func (m *Manager) processTraverse(req *Request) {
	ctx, span := m.tracer.Start(context.Background(), "fifo.traverse", trace.WithAttributes(
		attribute.Int64("version", int64(req.Version)),
		attribute.Int("limit", req.EffectiveTraverseLimit()),
	))
	defer span.End()

	end, endEntry := m.newCompletion()
	if end == nil {
		span.SetStatus(codes.Error, "completion exhausted")
		return
	}

	v := &traverseVisitor{m: m, id: req.ID, limit: req.EffectiveTraverseLimit()}
	if err := m.traverse(ctx, req, v); err != nil {
		span.RecordError(err)
		m.log.Debug("traverse ended early", zap.Stringer("id", req.ID), zap.Error(err))
	}
	span.SetAttributes(
		attribute.Int("emitted", v.emitted),
		attribute.Bool("truncated_paths", v.truncated > 0),
	)

	end.ID = req.ID
	end.Status = StatusTraverseEnd
	m.postCompletion(m.traverses, endEntry, end, queueTraverse)
}

func (m *Manager) traverse(ctx context.Context, req *Request, v *traverseVisitor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("trie traverse panicked",
				zap.Stringer("id", req.ID), zap.String("panic", fmt.Sprint(r)))
			err = fmt.Errorf("traverse panic: %v", r)
		}
	}()

	prefix, ok := req.keyNibbles()
	if !ok {
		m.metrics.drop(dropMalformedKey)
		return api.ErrKeyTooLong.WithContext("len", int(req.KeyLen))
	}
	start, err := m.db.Find(ctx, prefix, req.Version)
	if err != nil {
		return err
	}
	if start == nil {
		return nil
	}
	v.path = append(v.path[:0], prefix...)
	return m.db.Traverse(ctx, start, req.Version, v.limit, v)
}

// traverseVisitor keeps the nibble path of the current node.
type traverseVisitor struct {
	m         *Manager
	id        CorrelationID
	path      api.Nibbles
	limit     int
	emitted   int
	truncated int
}

var _ api.TraverseVisitor = (*traverseVisitor)(nil)

func (v *traverseVisitor) Down(branch byte, node api.Node) bool {
	if branch != api.InvalidBranch {
		v.path = append(v.path, branch)
		v.path = append(v.path, node.PathNibbles()...)
	}
	if v.emitted >= v.limit {
		return false
	}
	if node.HasValue() {
		v.emit(node)
	}
	return v.emitted < v.limit
}

func (v *traverseVisitor) Up(branch byte, node api.Node) {
	if branch == api.InvalidBranch {
		v.path = v.path[:0]
		return
	}
	keep := len(v.path) - len(node.PathNibbles()) - 1
	if keep < 0 {
		keep = 0
	}
	v.path = v.path[:keep]
}

func (v *traverseVisitor) emit(node api.Node) {
	m := v.m
	c, e := m.newCompletion()
	if c == nil {
		return
	}
	c.ID = v.id
	c.Status = StatusTraverseMore
	if packPath(v.path, &c.PathOrHash) {
		c.Flags |= CompletionFlagPathTruncated
		v.truncated++
	}
	if !m.attachValue(v.id, node.Value(), c) {
		m.discardCompletion(c, e)
		return
	}
	m.postCompletion(m.traverses, e, c, queueTraverse)
	v.emitted++
}
