// File: fifo/records.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-size request and completion records carried by the bridge queues.

package fifo

import (
	"fmt"
	"math"

	"github.com/momentics/hioload-mpt/api"
)

const (
	// KeyCapacity is the inline key buffer size of a Request.
	KeyCapacity = 32
	// InlineValueCapacity is the largest value copied into a Completion.
	InlineValueCapacity = 256
	// PathHashSize is the size of Completion.PathOrHash.
	PathHashSize = 32
	// LargeValueSentinel in Completion.ValueLen means the value travels
	// on the large-value queue.
	LargeValueSentinel = math.MaxUint32
	// DefaultTraverseLimit applies when Request.TraverseLimit is zero.
	DefaultTraverseLimit = 4096
	// PathTruncatedMarker is written to the last path byte of a
	// traversal completion whose path exceeded PathHashSize bytes.
	PathTruncatedMarker = 0xFF

	maxPathNibbles = PathHashSize * 2
)

// RequestKind selects the operation a worker runs.
type RequestKind uint8

const (
	KindFindValue RequestKind = 1
	KindFindNode  RequestKind = 2
	KindTraverse  RequestKind = 3
	KindShutdown  RequestKind = 255
)

func (k RequestKind) String() string {
	switch k {
	case KindFindValue:
		return "find_value"
	case KindFindNode:
		return "find_node"
	case KindTraverse:
		return "traverse"
	case KindShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ResultStatus is the outcome carried by a Completion.
type ResultStatus uint8

const (
	StatusOK           ResultStatus = 0
	StatusNotFound     ResultStatus = 1
	StatusError        ResultStatus = 2
	StatusTraverseMore ResultStatus = 3
	StatusTraverseEnd  ResultStatus = 4
)

func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	case StatusTraverseMore:
		return "traverse_more"
	case StatusTraverseEnd:
		return "traverse_end"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// CompletionFlags occupy the first padding byte of the wire record.
type CompletionFlags uint8

const (
	// CompletionFlagPathTruncated marks a traversal path cut to 64 nibbles.
	CompletionFlagPathTruncated CompletionFlags = 1 << 0
)

// Request is a caller-filled query. Ownership moves to the bridge on Submit.
type Request struct {
	ID            CorrelationID
	Version       uint64
	Kind          RequestKind
	KeyLen        uint8
	TraverseLimit uint32
	Key           [KeyCapacity]byte
}

// SetKey copies key into the inline buffer. Keys longer than KeyCapacity
// are rejected and leave the request unchanged.
func (r *Request) SetKey(key []byte) error {
	if len(key) > KeyCapacity {
		return api.ErrKeyTooLong.WithContext("len", len(key))
	}
	r.Key = [KeyCapacity]byte{}
	copy(r.Key[:], key)
	r.KeyLen = uint8(len(key))
	return nil
}

// KeyBytes returns the used part of the key buffer.
func (r *Request) KeyBytes() []byte {
	n := int(r.KeyLen)
	if n > KeyCapacity {
		n = KeyCapacity
	}
	return r.Key[:n]
}

// EffectiveTraverseLimit returns the traversal cap with the default applied.
func (r *Request) EffectiveTraverseLimit() int {
	if r.TraverseLimit == 0 {
		return DefaultTraverseLimit
	}
	return int(r.TraverseLimit)
}

func (r *Request) keyNibbles() (api.Nibbles, bool) {
	if int(r.KeyLen) > KeyCapacity {
		return nil, false
	}
	return api.NibblesFromBytes(r.Key[:r.KeyLen]), true
}

// Completion is one result record. Find results go to the completion
// queue; traversal records go to the traverse queue.
type Completion struct {
	ID         CorrelationID
	Status     ResultStatus
	Flags      CompletionFlags
	ValueLen   uint32
	Value      [InlineValueCapacity]byte
	PathOrHash [PathHashSize]byte
}

// HasLargeValue reports whether the value travels on the large-value queue.
func (c *Completion) HasLargeValue() bool {
	return c.ValueLen == LargeValueSentinel
}

// InlineValue returns the inline value, or nil when it is out of band.
func (c *Completion) InlineValue() []byte {
	if c.ValueLen == LargeValueSentinel || c.ValueLen > InlineValueCapacity {
		return nil
	}
	return c.Value[:c.ValueLen]
}

// PathTruncated reports whether the traversal path lost nibbles.
func (c *Completion) PathTruncated() bool {
	return c.Flags&CompletionFlagPathTruncated != 0
}

// LargeValue carries a value that did not fit inline. Payload is owned by
// the bridge pools and is valid until the record is freed.
type LargeValue struct {
	ID      CorrelationID
	Length  uint32
	Payload []byte
}

// packPath writes path into dst two nibbles per byte. Paths longer than
// 64 nibbles keep their first 64 nibbles and end in PathTruncatedMarker.
func packPath(path api.Nibbles, dst *[PathHashSize]byte) (truncated bool) {
	*dst = [PathHashSize]byte{}
	if len(path) <= maxPathNibbles {
		path.Pack(dst[:])
		return false
	}
	path[:maxPathNibbles].Pack(dst[:])
	dst[PathHashSize-1] = PathTruncatedMarker
	return true
}
