// Package pool
// Author: momentics <momentics@gmail.com>
//
// Record and payload pooling for the query bridge.
// Slab recycles fixed-size wire records through a lock-free free list with
// an optional live cap; BytePool serves large-value payloads from size
// classes; SyncPool is a typed sync.Pool.
package pool
