// Package pool
// Author: momentics <momentics@gmail.com>
//
// Packet-buffer arenas and zero-copy packet views for hioload-nic.
// Implements pool lifetime tracking with deferred release, all-or-nothing
// bulk allocation, batching, and the lock-free ring used by in-memory
// descriptor queues. See pool.go, packet.go, batch.go, ring.go.
package pool
