// Package api
// Author: momentics@gmail.com
//
// CPU affinity and thread pinning contract.

package api

// Affinity controls which CPU the calling OS thread executes on.
type Affinity interface {
	// Pin locks the current goroutine to its OS thread and binds it to cpuID.
	Pin(cpuID int) error
	// Unpin restores the original CPU set and unlocks the OS thread.
	Unpin() error
	// Get returns the CPUs the current thread may run on.
	Get() ([]int, error)
}
