package fifo

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mpt/api"
)

func TestRequest_SetKey(t *testing.T) {
	var r Request
	key := bytes.Repeat([]byte{0xAB}, KeyCapacity)
	require.NoError(t, r.SetKey(key))
	assert.Equal(t, uint8(KeyCapacity), r.KeyLen)
	assert.Equal(t, key, r.KeyBytes())

	err := r.SetKey(make([]byte, KeyCapacity+1))
	require.ErrorIs(t, err, api.ErrKeyTooLong)
	assert.Equal(t, key, r.KeyBytes(), "rejected key leaves request unchanged")

	require.NoError(t, r.SetKey([]byte("ab")))
	assert.Equal(t, []byte("ab"), r.KeyBytes())
	assert.Equal(t, [KeyCapacity]byte{'a', 'b'}, r.Key, "shorter key clears the tail")
}

func TestRequest_EffectiveTraverseLimit(t *testing.T) {
	r := Request{}
	assert.Equal(t, DefaultTraverseLimit, r.EffectiveTraverseLimit())
	r.TraverseLimit = 7
	assert.Equal(t, 7, r.EffectiveTraverseLimit())
}

func TestRequest_KeyNibblesRejectsOversizedLength(t *testing.T) {
	r := Request{KeyLen: KeyCapacity + 1}
	_, ok := r.keyNibbles()
	assert.False(t, ok)
	assert.Len(t, r.KeyBytes(), KeyCapacity)
}

func TestCompletion_Accessors(t *testing.T) {
	c := Completion{ValueLen: 3}
	copy(c.Value[:], "abc")
	assert.Equal(t, []byte("abc"), c.InlineValue())
	assert.False(t, c.HasLargeValue())

	c.ValueLen = LargeValueSentinel
	assert.Nil(t, c.InlineValue())
	assert.True(t, c.HasLargeValue())

	assert.False(t, c.PathTruncated())
	c.Flags |= CompletionFlagPathTruncated
	assert.True(t, c.PathTruncated())
}

func TestPackPath(t *testing.T) {
	var dst [PathHashSize]byte

	exact := make(api.Nibbles, maxPathNibbles)
	for i := range exact {
		exact[i] = byte(i % 16)
	}
	require.False(t, packPath(exact, &dst))
	assert.Equal(t, byte(0xEF), dst[PathHashSize-1], "64 nibbles pack without the marker")
	assert.Equal(t, byte(0x01), dst[0])

	long := append(append(api.Nibbles(nil), exact...), 0x3)
	require.True(t, packPath(long, &dst))
	assert.Equal(t, byte(PathTruncatedMarker), dst[PathHashSize-1])
	assert.Equal(t, byte(0x01), dst[0])

	require.False(t, packPath(api.Nibbles{0x6, 0x1, 0x6}, &dst))
	assert.Equal(t, []byte{0x61, 0x60, 0x00}, dst[:3], "odd path fills the high nibble and clears the rest")
}

func TestRequestWireLayout(t *testing.T) {
	r := Request{
		ID:            CorrelationID{Lo: 0x0102030405060708, Hi: 0x1112131415161718},
		Version:       42,
		Kind:          KindTraverse,
		TraverseLimit: 9,
	}
	require.NoError(t, r.SetKey([]byte("key")))

	b, err := r.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, RequestWireSize)
	assert.Equal(t, r.ID.Lo, binary.LittleEndian.Uint64(b[0:]))
	assert.Equal(t, r.ID.Hi, binary.LittleEndian.Uint64(b[8:]))
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(b[16:]))
	assert.Equal(t, byte(KindTraverse), b[24])
	assert.Equal(t, byte(3), b[25])
	assert.Equal(t, []byte{0, 0}, b[26:28])
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(b[28:]))
	assert.Equal(t, []byte("key"), b[32:35])

	var got Request
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, r, got)
}

func TestRequestWireRejects(t *testing.T) {
	var r Request
	require.ErrorIs(t, r.UnmarshalBinary(make([]byte, 10)), api.ErrInvalidRecord)

	b := make([]byte, RequestWireSize)
	b[25] = KeyCapacity + 1
	require.ErrorIs(t, r.UnmarshalBinary(b), api.ErrKeyTooLong)
}

func TestCompletionWireLayout(t *testing.T) {
	c := Completion{
		ID:       CorrelationID{Lo: 1, Hi: 2},
		Status:   StatusTraverseMore,
		Flags:    CompletionFlagPathTruncated,
		ValueLen: LargeValueSentinel,
	}
	c.PathOrHash[31] = PathTruncatedMarker

	b, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, CompletionWireSize)
	assert.Equal(t, byte(StatusTraverseMore), b[16])
	assert.Equal(t, byte(CompletionFlagPathTruncated), b[17])
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(b[20:]))
	assert.Equal(t, byte(0xFF), b[311])

	var got Completion
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, c, got)
	require.ErrorIs(t, got.UnmarshalBinary(b[:300]), api.ErrInvalidRecord)
}

func TestLargeValueWire(t *testing.T) {
	v := LargeValue{ID: CorrelationID{Lo: 5}, Length: 4, Payload: []byte("abcd")}
	b, err := v.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, LargeValueHeaderWireSize+4)

	var got LargeValue
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, v, got)

	require.ErrorIs(t, got.UnmarshalBinary(b[:LargeValueHeaderWireSize+2]), api.ErrInvalidRecord)
	require.ErrorIs(t, got.UnmarshalBinary(b[:5]), api.ErrInvalidRecord)
}

func TestCorrelationID_UUID(t *testing.T) {
	u := uuid.MustParse("0102030405060708090a0b0c0d0e0f10")
	id := CorrelationIDFromUUID(u)
	assert.Equal(t, uint64(0x0102030405060708), id.Hi)
	assert.Equal(t, uint64(0x090a0b0c0d0e0f10), id.Lo)
	assert.Equal(t, u, id.UUID())
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", id.String())
	assert.False(t, id.IsZero())
	assert.True(t, CorrelationID{}.IsZero())
	assert.NotEqual(t, NewCorrelationID(), NewCorrelationID())
	assert.Equal(t, CorrelationID{Lo: 1, Hi: 2}, CorrelationIDFromParts(1, 2))
}

func TestKindAndStatusStrings(t *testing.T) {
	assert.Equal(t, "find_value", KindFindValue.String())
	assert.Equal(t, "shutdown", KindShutdown.String())
	assert.Equal(t, "kind(9)", RequestKind(9).String())
	assert.Equal(t, "traverse_end", StatusTraverseEnd.String())
	assert.Equal(t, "status(9)", ResultStatus(9).String())
}
