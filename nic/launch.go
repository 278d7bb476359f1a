// File: nic/launch.go
// Author: momentics <momentics@gmail.com>
//
// Core launcher: runs caller-supplied work on an OS-thread-locked
// goroutine pinned to a specific core. Pinning is best effort; a failure
// is logged and the work proceeds unpinned.

package nic

import (
	"runtime"
	"sync"

	"github.com/momentics/hioload-nic/affinity"
	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/logging"
)

// JoinHandle waits for one launched unit of work. There is no
// cancellation: a launched unit runs to completion.
type JoinHandle struct {
	done chan struct{}
}

// Join blocks until the launched function returns.
func (h *JoinHandle) Join() {
	<-h.done
}

// Launch spawns f on a new OS-thread-locked goroutine pinned to core.
func Launch(core api.CoreID, f func()) *JoinHandle {
	h := &JoinHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		runOn(core, f)
	}()
	return h
}

// LaunchGroup binds launched units to an enclosing scope: Wait joins
// them all, so captured references need not outlive the scope.
type LaunchGroup struct {
	wg sync.WaitGroup
}

// Launch spawns f on a pinned goroutine tracked by the group.
func (g *LaunchGroup) Launch(core api.CoreID, f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		runOn(core, f)
	}()
}

// Wait blocks until every launched unit has completed.
func (g *LaunchGroup) Wait() {
	g.wg.Wait()
}

func runOn(core api.CoreID, f func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := affinity.SetAffinity(int(core)); err != nil {
		logging.Warnf("nic: core %d: pinning failed, running unpinned: %v", core, err)
	}
	f()
}
