// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides an in-memory versioned trie for tests and examples.
package fake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/momentics/hioload-mpt/api"
)

// ErrForeignNode is returned by Traverse for a node not produced by this trie.
var ErrForeignNode = errors.New("fake: node does not belong to this trie")

// ErrStaleVersion is returned when writing below the latest version.
var ErrStaleVersion = errors.New("fake: version older than latest")

type node struct {
	path     api.Nibbles
	value    []byte
	hasValue bool
	children [16]*node
	data     []byte
}

func (n *node) HasValue() bool           { return n.hasValue }
func (n *node) Value() []byte            { return n.value }
func (n *node) Data() []byte             { return n.data }
func (n *node) PathNibbles() api.Nibbles { return n.path }

func (n *node) clone() *node {
	c := *n
	c.data = nil
	return &c
}

func (n *node) childCount() (count int, last byte) {
	for b, c := range n.children {
		if c != nil {
			count++
			last = byte(b)
		}
	}
	return count, last
}

// Update is one write of a batch. Delete removes Key and ignores Value.
type Update struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Trie is a copy-on-write nibble Patricia trie keeping one root per
// version. Nodes are immutable once a version is committed, so readers
// never block writers for longer than a map lookup.
type Trie struct {
	mu        sync.RWMutex
	roots     map[uint64]*node
	latest    uint64
	hasLatest bool
}

var _ api.Trie = (*Trie)(nil)

// New returns an empty trie.
func New() *Trie {
	return &Trie{roots: make(map[uint64]*node)}
}

// Put writes one value at version.
func (t *Trie) Put(version uint64, key, value []byte) error {
	return t.Upsert(version, Update{Key: key, Value: value})
}

// Upsert applies updates on top of the latest version and commits the
// result as version.
func (t *Trie) Upsert(version uint64, updates ...Update) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasLatest && version < t.latest {
		return fmt.Errorf("%w: %d < %d", ErrStaleVersion, version, t.latest)
	}
	root := &node{}
	if t.hasLatest {
		root = t.roots[t.latest]
	}
	for _, u := range updates {
		key := api.NibblesFromBytes(u.Key)
		if u.Delete {
			root = remove(root, key, true)
			continue
		}
		root = insert(root, key, append([]byte(nil), u.Value...))
	}
	seal(root)
	t.roots[version] = root
	t.latest = version
	t.hasLatest = true
	return nil
}

// Latest returns the newest committed version.
func (t *Trie) Latest() (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest, t.hasLatest
}

// Find resolves key at version. Keys that end inside a compressed path
// segment are absent.
func (t *Trie) Find(ctx context.Context, key api.Nibbles, version uint64) (api.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	n := t.roots[version]
	t.mu.RUnlock()

	rest := key
	for n != nil {
		if !rest.HasPrefix(n.path) {
			return nil, nil
		}
		rest = rest[len(n.path):]
		if len(rest) == 0 {
			return n, nil
		}
		n = n.children[rest[0]]
		rest = rest[1:]
	}
	return nil, nil
}

// Traverse walks the subtree under start depth-first in branch order and
// stops descending once limit value-bearing nodes were visited.
func (t *Trie) Traverse(ctx context.Context, start api.Node, _ uint64, limit int, v api.TraverseVisitor) error {
	n, ok := start.(*node)
	if !ok || n == nil {
		return ErrForeignNode
	}
	w := &walker{ctx: ctx, v: v, limit: limit}
	w.walk(api.InvalidBranch, n)
	return w.err
}

type walker struct {
	ctx    context.Context
	v      api.TraverseVisitor
	limit  int
	values int
	err    error
}

func (w *walker) walk(branch byte, n *node) {
	if w.err != nil {
		return
	}
	if err := w.ctx.Err(); err != nil {
		w.err = err
		return
	}
	if w.limit > 0 && w.values >= w.limit {
		return
	}
	if n.hasValue {
		w.values++
	}
	if w.v.Down(branch, n) {
		for b, c := range n.children {
			if c != nil {
				w.walk(byte(b), c)
			}
		}
	}
	w.v.Up(branch, n)
}

func insert(n *node, rest api.Nibbles, value []byte) *node {
	if n == nil {
		return &node{path: append(api.Nibbles(nil), rest...), value: value, hasValue: true}
	}
	cp := n.path.CommonPrefixLen(rest)
	if cp < len(n.path) {
		parent := &node{path: append(api.Nibbles(nil), n.path[:cp]...)}
		child := n.clone()
		child.path = append(api.Nibbles(nil), n.path[cp+1:]...)
		parent.children[n.path[cp]] = child
		if cp == len(rest) {
			parent.value, parent.hasValue = value, true
		} else {
			parent.children[rest[cp]] = &node{
				path:     append(api.Nibbles(nil), rest[cp+1:]...),
				value:    value,
				hasValue: true,
			}
		}
		return parent
	}
	c := n.clone()
	rest = rest[cp:]
	if len(rest) == 0 {
		c.value, c.hasValue = value, true
		return c
	}
	c.children[rest[0]] = insert(n.children[rest[0]], rest[1:], value)
	return c
}

func remove(n *node, rest api.Nibbles, root bool) *node {
	if n == nil || !rest.HasPrefix(n.path) {
		return n
	}
	rest = rest[len(n.path):]
	c := n.clone()
	if len(rest) == 0 {
		if !n.hasValue {
			return n
		}
		c.value, c.hasValue = nil, false
	} else {
		child := n.children[rest[0]]
		updated := remove(child, rest[1:], false)
		if updated == child {
			return n
		}
		c.children[rest[0]] = updated
	}
	if root {
		return c
	}
	return compact(c)
}

// compact drops empty nodes and merges a valueless node into its only child.
func compact(n *node) *node {
	if n.hasValue {
		return n
	}
	count, b := n.childCount()
	switch count {
	case 0:
		return nil
	case 1:
		child := n.children[b]
		merged := child.clone()
		merged.path = append(append(append(api.Nibbles(nil), n.path...), b), child.path...)
		return merged
	}
	return n
}

// seal computes the Keccak-256 tag of every node created by the last batch.
func seal(n *node) []byte {
	if n.data != nil {
		return n.data
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{byte(len(n.path))})
	h.Write(n.path)
	if n.hasValue {
		h.Write([]byte{1})
		h.Write(n.value)
	} else {
		h.Write([]byte{0})
	}
	for b, c := range n.children {
		if c != nil {
			h.Write([]byte{byte(b)})
			h.Write(seal(c))
		}
	}
	n.data = h.Sum(nil)
	return n.data
}
