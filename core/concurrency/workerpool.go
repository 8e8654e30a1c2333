// File: core/concurrency/workerpool.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerPool runs a fixed set of consumer goroutines under a running flag.
// Start and Stop are idempotent and serialized; Stop waits for every worker.

package concurrency

import (
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// WorkerFunc is the body of one worker. It must return once Running
// reports false or it receives its own exit signal.
type WorkerFunc func(id int)

// WorkerPool manages a pool of worker goroutines.
type WorkerPool struct {
	mu      sync.Mutex
	running atomic.Bool
	gen     atomic.Uint64
	wg      *conc.WaitGroup
	size    int
	onPanic func(*panics.Recovered)
}

// NewWorkerPool creates a stopped pool. onPanic receives a worker panic
// that escaped the worker body.
func NewWorkerPool(onPanic func(*panics.Recovered)) *WorkerPool {
	return &WorkerPool{onPanic: onPanic}
}

// Start spawns n workers running fn. A zero count starts one worker.
// It reports false when the pool was already running.
func (p *WorkerPool) Start(n int, fn WorkerFunc) (bool, error) {
	if n < 0 {
		return false, ErrInvalidWorkerCount
	}
	if n == 0 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running.Load() {
		return false, nil
	}
	// Set before spawning so no worker observes a stale flag.
	p.gen.Add(1)
	p.running.Store(true)
	p.wg = conc.NewWaitGroup()
	p.size = n
	for i := 0; i < n; i++ {
		id := i
		p.wg.Go(func() { fn(id) })
	}
	return true, nil
}

// Stop clears the running flag, calls signal with the worker count so the
// caller can post exit messages, then waits for all workers. It reports
// false when the pool was not running.
func (p *WorkerPool) Stop(signal func(n int)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running.CompareAndSwap(true, false) {
		return false
	}
	if signal != nil {
		signal(p.size)
	}
	if r := p.wg.WaitAndRecover(); r != nil && p.onPanic != nil {
		p.onPanic(r)
	}
	p.wg = nil
	p.size = 0
	return true
}

// Running reports the pool flag.
func (p *WorkerPool) Running() bool {
	return p.running.Load()
}

// Generation counts successful starts. Workers of one run observe the
// same value for the whole run.
func (p *WorkerPool) Generation() uint64 {
	return p.gen.Load()
}

// Size returns the number of workers of the current run.
func (p *WorkerPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}
