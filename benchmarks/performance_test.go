// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-mpt components.

package benchmarks

import (
	"encoding/binary"
	"testing"

	"github.com/momentics/hioload-mpt/control"
	"github.com/momentics/hioload-mpt/core/concurrency"
	"github.com/momentics/hioload-mpt/facade"
	"github.com/momentics/hioload-mpt/fake"
	"github.com/momentics/hioload-mpt/fifo"
	"github.com/momentics/hioload-mpt/logger"
	"github.com/momentics/hioload-mpt/pool"
)

// BenchmarkMPMCQueue measures paired enqueue/dequeue under contention.
func BenchmarkMPMCQueue(b *testing.B) {
	alloc := concurrency.NewEntryAllocator[int](0)
	q := concurrency.NewMPMCQueue(alloc.Seed())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Enqueue(alloc.Alloc(), i)
			if _, g, ok := q.Dequeue(); ok {
				alloc.Free(g)
			}
			i++
		}
	})
}

// BenchmarkLockFreeQueueThroughput measures the bounded free-list queue.
func BenchmarkLockFreeQueueThroughput(b *testing.B) {
	ring := concurrency.NewLockFreeQueue[int](1024)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if !ring.Enqueue(i) {
				ring.Dequeue()
				ring.Enqueue(i)
			}
			i++
		}
	})
}

// BenchmarkSlabRecycle measures record reuse through a slab.
func BenchmarkSlabRecycle(b *testing.B) {
	slab := pool.NewSlab[fifo.Completion](pool.DefaultSlabCapacity, 0, nil)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			slab.Put(slab.Get())
		}
	})
}

// BenchmarkBytePool measures large-value payload buffers.
func BenchmarkBytePool(b *testing.B) {
	bp := pool.NewBytePool()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bp.Release(bp.Acquire(4096))
		}
	})
}

// BenchmarkBridgeFind measures submit-to-poll latency of inline Find
// results through the facade.
func BenchmarkBridgeFind(b *testing.B) {
	const keys = 1024
	db := fake.New()
	ups := make([]fake.Update, 0, keys)
	for i := 0; i < keys; i++ {
		k := binary.BigEndian.AppendUint16(nil, uint16(i))
		ups = append(ups, fake.Update{Key: k, Value: k})
	}
	if err := db.Upsert(1, ups...); err != nil {
		b.Fatal(err)
	}

	cfg := control.DefaultConfig()
	cfg.Workers = 4
	bridge, err := facade.New(db, cfg,
		facade.WithLogger(logger.NewNoopLogger()),
		facade.WithMetricsRegistry(control.NewMetricsRegistry(false)),
	)
	if err != nil {
		b.Fatal(err)
	}
	defer bridge.Shutdown()
	if err := bridge.Start(); err != nil {
		b.Fatal(err)
	}
	m := bridge.Manager()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := binary.BigEndian.AppendUint16(nil, uint16(i%keys))
		if err := m.SubmitFind(fifo.CorrelationIDFromParts(uint64(i), 0), fifo.KindFindValue, k, 1); err != nil {
			b.Fatal(err)
		}
		for {
			if c := m.PollCompletion(); c != nil {
				m.FreeCompletion(c)
				break
			}
		}
	}
}

// BenchmarkBridgeBatch measures 64-request batches.
func BenchmarkBridgeBatch(b *testing.B) {
	const batch = 64
	db := fake.New()
	if err := db.Put(1, []byte("key"), []byte("value")); err != nil {
		b.Fatal(err)
	}
	m, err := fifo.New(db)
	if err != nil {
		b.Fatal(err)
	}
	defer m.Destroy()
	if err := m.Start(4); err != nil {
		b.Fatal(err)
	}

	reqs := make([]*fifo.Request, batch)
	out := make([]*fifo.Completion, batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n := m.AllocRequestBatch(reqs)
		for _, r := range reqs[:n] {
			r.Kind = fifo.KindFindValue
			r.Version = 1
			_ = r.SetKey([]byte("key"))
		}
		if _, err := m.SubmitBatch(reqs[:n]); err != nil {
			b.Fatal(err)
		}
		for got := 0; got < n; {
			k := m.PollCompletionBatch(out)
			m.FreeCompletionBatch(out[:k])
			got += k
		}
	}
}
