// File: fifo/correlation.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fifo

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// CorrelationID is the caller's opaque 128-bit token, split in two halves
// the way the wire records store it.
type CorrelationID struct {
	Lo uint64
	Hi uint64
}

// NewCorrelationID returns a random (version 4) id.
func NewCorrelationID() CorrelationID {
	return CorrelationIDFromUUID(uuid.New())
}

// CorrelationIDFromUUID maps the first eight bytes to Hi and the rest to Lo.
func CorrelationIDFromUUID(u uuid.UUID) CorrelationID {
	return CorrelationID{
		Hi: binary.BigEndian.Uint64(u[:8]),
		Lo: binary.BigEndian.Uint64(u[8:]),
	}
}

// UUID is the inverse of CorrelationIDFromUUID.
func (id CorrelationID) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], id.Hi)
	binary.BigEndian.PutUint64(u[8:], id.Lo)
	return u
}

// IsZero reports whether both halves are zero.
func (id CorrelationID) IsZero() bool {
	return id.Lo == 0 && id.Hi == 0
}

func (id CorrelationID) String() string {
	return fmt.Sprintf("%016x%016x", id.Hi, id.Lo)
}

// CorrelationIDFromParts builds an id from its wire halves.
func CorrelationIDFromParts(lo, hi uint64) CorrelationID {
	return CorrelationID{Lo: lo, Hi: hi}
}
