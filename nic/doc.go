// Package nic
// Author: momentics <momentics@gmail.com>
//
// Resource lifecycle and queue-affinity management over the raw hardware
// capability layer: one-time runtime initialization, NUMA-aware
// core/queue planning, per-port setup with dedicated RX pools, burst
// receive/transmit with strict buffer ownership, and pinned core
// launching. See runtime.go, planner.go, setup.go, queue.go, launch.go.
package nic
