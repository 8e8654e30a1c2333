//go:build !linux

// File: affinity/affinity_other.go
// Author: momentics <momentics@gmail.com>

package affinity

func setThreadCPUs([]int) error {
	return ErrUnsupported
}

func threadCPUs() ([]int, error) {
	return nil, ErrUnsupported
}
