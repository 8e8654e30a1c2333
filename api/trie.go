//go:generate mockgen -source trie.go -destination ../internal/mocks/mock_trie.go -package mocks

// File: api/trie.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contracts of the versioned trie engine queried by the bridge.

package api

import "context"

// InvalidBranch is passed to TraverseVisitor for the traversal root.
const InvalidBranch byte = 0xFF

// Node is a resolved trie node at a given version.
type Node interface {
	// HasValue reports whether the node carries a logical value.
	HasValue() bool
	// Value returns the node value. Callers must not retain or mutate it.
	Value() []byte
	// Data returns the node authentication tag. Hashed nodes return 32 bytes.
	Data() []byte
	// PathNibbles returns the node's own path segment below its parent branch.
	PathNibbles() Nibbles
}

// TraverseVisitor observes a depth-first subtree walk.
//
// Down is invoked on entry to each node; returning false skips the node's
// children. Up is invoked on exit of every node that Down was invoked for.
type TraverseVisitor interface {
	Down(branch byte, node Node) bool
	Up(branch byte, node Node)
}

// Trie is the read capability the bridge needs from the engine.
// Implementations must be safe for concurrent readers.
type Trie interface {
	// Find resolves key at version. An absent key yields (nil, nil) or ErrNotFound.
	Find(ctx context.Context, key Nibbles, version uint64) (Node, error)
	// Traverse walks the subtree rooted at start, delivering at most limit
	// value-bearing nodes to v in depth-first order.
	Traverse(ctx context.Context, start Node, version uint64, limit int, v TraverseVisitor) error
}
