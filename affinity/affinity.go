// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations
// are located in separate files (affinity_linux.go, affinity_stub.go)
// guarded by build tags.

package affinity

// SetAffinity pins the current OS thread to a given logical CPU/core on
// supported platforms. On unsupported platforms returns an error. The
// caller must already hold runtime.LockOSThread.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}
