// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"math/bits"

	"github.com/momentics/hioload-mpt/api"
)

const (
	minClassShift = 9  // 512 B
	maxClassShift = 20 // 1 MiB
)

// BytePool hands out payload buffers from power-of-two size classes.
// Requests above the largest class are allocated exactly and never pooled.
type BytePool struct {
	classes [maxClassShift - minClassShift + 1]*SyncPool[*[]byte]
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool creates an empty size-class pool.
func NewBytePool() *BytePool {
	bp := &BytePool{}
	for i := range bp.classes {
		size := 1 << (i + minClassShift)
		bp.classes[i] = NewSyncPool(func() *[]byte {
			b := make([]byte, size)
			return &b
		})
	}
	return bp
}

func classIndex(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(n - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

// Acquire returns a buffer of length n.
func (bp *BytePool) Acquire(n int) []byte {
	idx := classIndex(n)
	if idx < 0 {
		return make([]byte, n)
	}
	b := *bp.classes[idx].Get()
	return b[:n]
}

// Release returns buf to its class. Buffers not produced by Acquire are dropped.
func (bp *BytePool) Release(buf []byte) {
	c := cap(buf)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	idx := classIndex(c)
	if idx < 0 || 1<<(idx+minClassShift) != c {
		return
	}
	b := buf[:c]
	bp.classes[idx].Put(&b)
}
