// File: core/concurrency/idle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cooperative idling for queue consumers: yield first, then park with an
// exponential timer that a producer can cut short.

package concurrency

import (
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// IdleConfig tunes Idler.
type IdleConfig struct {
	// Spins is the number of consecutive empty polls answered with a
	// scheduler yield before the consumer parks.
	Spins int
	// Initial is the first park interval.
	Initial time.Duration
	// Max caps the park interval and bounds wake-up latency when a
	// notification is missed.
	Max time.Duration
}

// DefaultIdleConfig returns the settings used by the bridge workers.
func DefaultIdleConfig() IdleConfig {
	return IdleConfig{
		Spins:   64,
		Initial: time.Microsecond,
		Max:     time.Millisecond,
	}
}

// Waker delivers wake-up tokens to parked consumers.
type Waker struct {
	ch chan struct{}
}

// NewWaker creates a waker able to hold n pending tokens.
func NewWaker(n int) *Waker {
	if n < 1 {
		n = 1
	}
	return &Waker{ch: make(chan struct{}, n)}
}

// Notify posts one token without blocking.
func (w *Waker) Notify() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// Broadcast fills the token buffer so every parked consumer wakes.
func (w *Waker) Broadcast() {
	for i := 0; i < cap(w.ch); i++ {
		select {
		case w.ch <- struct{}{}:
		default:
			return
		}
	}
}

// Idler is owned by a single consumer goroutine.
type Idler struct {
	cfg    IdleConfig
	spins  int
	b      *backoff.ExponentialBackOff
	timer  *time.Timer
	waker  *Waker
	onPark func()
}

// NewIdler binds an idler to waker. onPark, if set, runs before each park.
func NewIdler(cfg IdleConfig, waker *Waker, onPark func()) *Idler {
	if cfg.Initial <= 0 {
		cfg.Initial = time.Microsecond
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.Initial,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         cfg.Max,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &Idler{cfg: cfg, b: b, timer: t, waker: waker, onPark: onPark}
}

// Idle is called after an empty poll. It yields the processor for the
// first Spins calls and parks afterwards until a token or the timer fires.
func (i *Idler) Idle() {
	if i.spins < i.cfg.Spins {
		i.spins++
		runtime.Gosched()
		return
	}
	d := i.b.NextBackOff()
	if d == backoff.Stop || d > i.cfg.Max {
		d = i.cfg.Max
	}
	if i.onPark != nil {
		i.onPark()
	}
	i.timer.Reset(d)
	select {
	case <-i.waker.ch:
		i.timer.Stop()
	case <-i.timer.C:
	}
}

// Reset is called after a successful poll.
func (i *Idler) Reset() {
	if i.spins == 0 {
		return
	}
	i.spins = 0
	i.b.Reset()
}

// Close releases the idler timer.
func (i *Idler) Close() {
	i.timer.Stop()
}
