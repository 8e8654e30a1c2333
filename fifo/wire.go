// File: fifo/wire.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bit-exact little-endian encodings of the bridge records.
//
// Request (64 bytes):
//
//	0  lo u64 | 8 hi u64 | 16 version u64 | 24 kind u8 | 25 key_len u8
//	26 pad[2] | 28 traverse_limit u32 | 32 key[32]
//
// Completion (312 bytes):
//
//	0  lo u64 | 8 hi u64 | 16 status u8 | 17 flags u8 | 18 pad[2]
//	20 value_len u32 | 24 value[256] | 280 path_or_hash[32]
//
// LargeValue (20 + length bytes):
//
//	0  lo u64 | 8 hi u64 | 16 length u32 | 20 payload

package fifo

import (
	"encoding/binary"
	"fmt"

	"github.com/momentics/hioload-mpt/api"
)

const (
	RequestWireSize          = 64
	CompletionWireSize       = 312
	LargeValueHeaderWireSize = 20
)

var le = binary.LittleEndian

// MarshalBinary encodes r in its 64-byte wire layout.
func (r *Request) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, RequestWireSize))
}

// AppendBinary appends the wire layout of r to b.
func (r *Request) AppendBinary(b []byte) ([]byte, error) {
	b = le.AppendUint64(b, r.ID.Lo)
	b = le.AppendUint64(b, r.ID.Hi)
	b = le.AppendUint64(b, r.Version)
	b = append(b, byte(r.Kind), r.KeyLen, 0, 0)
	b = le.AppendUint32(b, r.TraverseLimit)
	return append(b, r.Key[:]...), nil
}

// UnmarshalBinary decodes a 64-byte wire record.
func (r *Request) UnmarshalBinary(b []byte) error {
	if len(b) != RequestWireSize {
		return fmt.Errorf("request: %w", api.ErrInvalidRecord.WithContext("len", len(b)))
	}
	if b[25] > KeyCapacity {
		return fmt.Errorf("request: %w", api.ErrKeyTooLong.WithContext("len", int(b[25])))
	}
	r.ID.Lo = le.Uint64(b[0:])
	r.ID.Hi = le.Uint64(b[8:])
	r.Version = le.Uint64(b[16:])
	r.Kind = RequestKind(b[24])
	r.KeyLen = b[25]
	r.TraverseLimit = le.Uint32(b[28:])
	copy(r.Key[:], b[32:64])
	return nil
}

// MarshalBinary encodes c in its 312-byte wire layout.
func (c *Completion) MarshalBinary() ([]byte, error) {
	return c.AppendBinary(make([]byte, 0, CompletionWireSize))
}

// AppendBinary appends the wire layout of c to b.
func (c *Completion) AppendBinary(b []byte) ([]byte, error) {
	b = le.AppendUint64(b, c.ID.Lo)
	b = le.AppendUint64(b, c.ID.Hi)
	b = append(b, byte(c.Status), byte(c.Flags), 0, 0)
	b = le.AppendUint32(b, c.ValueLen)
	b = append(b, c.Value[:]...)
	return append(b, c.PathOrHash[:]...), nil
}

// UnmarshalBinary decodes a 312-byte wire record.
func (c *Completion) UnmarshalBinary(b []byte) error {
	if len(b) != CompletionWireSize {
		return fmt.Errorf("completion: %w", api.ErrInvalidRecord.WithContext("len", len(b)))
	}
	c.ID.Lo = le.Uint64(b[0:])
	c.ID.Hi = le.Uint64(b[8:])
	c.Status = ResultStatus(b[16])
	c.Flags = CompletionFlags(b[17])
	c.ValueLen = le.Uint32(b[20:])
	copy(c.Value[:], b[24:280])
	copy(c.PathOrHash[:], b[280:312])
	return nil
}

// MarshalBinary encodes the header followed by the payload.
func (v *LargeValue) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, LargeValueHeaderWireSize+len(v.Payload))
	b = le.AppendUint64(b, v.ID.Lo)
	b = le.AppendUint64(b, v.ID.Hi)
	b = le.AppendUint32(b, v.Length)
	return append(b, v.Payload...), nil
}

// UnmarshalBinary decodes header and payload. The payload is copied.
func (v *LargeValue) UnmarshalBinary(b []byte) error {
	if len(b) < LargeValueHeaderWireSize {
		return fmt.Errorf("large value: %w", api.ErrInvalidRecord.WithContext("len", len(b)))
	}
	n := le.Uint32(b[16:])
	if uint64(len(b)-LargeValueHeaderWireSize) != uint64(n) {
		return fmt.Errorf("large value: %w", api.ErrInvalidRecord.WithContext("length", n))
	}
	v.ID.Lo = le.Uint64(b[0:])
	v.ID.Hi = le.Uint64(b[8:])
	v.Length = n
	v.Payload = append([]byte(nil), b[LargeValueHeaderWireSize:]...)
	return nil
}
