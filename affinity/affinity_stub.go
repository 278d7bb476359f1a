//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub affinity implementation for platforms without thread pinning
// support. Pinning is a performance optimization, so callers treat the
// returned error as a warning.

package affinity

import "errors"

func setAffinityPlatform(cpuID int) error {
	return errors.New("affinity: thread pinning not supported on this platform")
}
