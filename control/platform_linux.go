//go:build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux platform probes.

package control

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// RegisterPlatformProbes adds CPU visibility probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.gomaxprocs", func() any {
		return runtime.GOMAXPROCS(0)
	})
	dp.RegisterProbe("platform.allowed_cpus", func() any {
		var set unix.CPUSet
		if err := unix.SchedGetaffinity(0, &set); err != nil {
			return err.Error()
		}
		return set.Count()
	})
}
