// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for record and payload reuse.

package api

// BytePool provides reusable []byte buffers for large-value payloads.
type BytePool interface {
	// Acquire returns a slice of exactly n bytes.
	Acquire(n int) []byte

	// Release returns a buffer to the pool
	Release(buf []byte)
}

// ObjectPool provides generic pooling of Go objects allocated transiently
type ObjectPool[T any] interface {
	// Get returns an available instance from pool
	Get() T

	// Put returns an instance for reuse
	Put(obj T)
}

// PoolStats reports allocation counters of a record pool.
type PoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	Exhausted  int64
}
