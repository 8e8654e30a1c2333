// Package fifo
// Author: momentics <momentics@gmail.com>
//
// Asynchronous query bridge over a versioned trie.
//
// Callers allocate fixed-size Request records, submit them to a lock-free
// request queue and poll results from three queues: Find completions,
// traversal records and out-of-band large values. A pool of workers drains
// the request queue, resolves each request against an api.Trie and posts
// results without ever blocking the caller.
//
// A completion whose ValueLen equals LargeValueSentinel is paired with a
// LargeValue of the same correlation id, which is always queued first.
// Joiner performs that pairing and returns self-contained Results.
package fifo
