// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral CPU pinning of worker threads. Platform code lives in
// affinity_linux.go and affinity_other.go.

package affinity

import (
	"errors"
	"runtime"

	"github.com/momentics/hioload-mpt/api"
)

// ErrUnsupported is returned by Pin where thread affinity is unavailable.
var ErrUnsupported = errors.New("affinity: not supported on this platform")

// Pinner binds the calling goroutine's OS thread to one CPU. One Pinner can
// serve every worker: the per-thread state lives in the kernel.
//
// Pin locks the goroutine to its thread even when it fails, so every Pin
// must be followed by Unpin on the same goroutine.
type Pinner struct {
	base []int
}

var _ api.Affinity = (*Pinner)(nil)

// New captures the CPUs the process may run on; Unpin restores them.
func New() *Pinner {
	base, err := threadCPUs()
	if err != nil {
		base = nil
	}
	return &Pinner{base: base}
}

// Pin locks the calling goroutine to its thread and binds it to cpuID.
func (p *Pinner) Pin(cpuID int) error {
	runtime.LockOSThread()
	if cpuID < 0 {
		return api.ErrInvalidArgument.WithContext("cpu", cpuID)
	}
	return setThreadCPUs([]int{cpuID})
}

// Unpin restores the captured CPU set and unlocks the thread.
func (p *Pinner) Unpin() error {
	defer runtime.UnlockOSThread()
	if len(p.base) == 0 {
		return nil
	}
	return setThreadCPUs(p.base)
}

// Get returns the CPUs the calling thread may run on.
func (p *Pinner) Get() ([]int, error) {
	return threadCPUs()
}

// Base returns the CPU set captured by New.
func (p *Pinner) Base() []int {
	return append([]int(nil), p.base...)
}
