//go:build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux thread affinity through sched_setaffinity(2).

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-mpt/api"
)

const maxCPUs = 1024

func setThreadCPUs(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		if c >= maxCPUs {
			return api.ErrInvalidArgument.WithContext("cpu", c)
		}
		set.Set(c)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity %v: %w", cpus, err)
	}
	return nil
}

func threadCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("affinity: sched_getaffinity: %w", err)
	}
	out := make([]int, 0, set.Count())
	for c := 0; c < maxCPUs; c++ {
		if set.IsSet(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
