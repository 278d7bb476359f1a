// File: api/capability.go
// Author: momentics <momentics@gmail.com>
//
// Capability is the boundary to the raw hardware-I/O layer: device
// enumeration, topology queries, queue setup, pool creation and burst
// read/write primitives. The layer offers no safety guarantees of its own;
// everything above it (nic, pool) exists to make it safe to use.
//
// Thread-safety contract: once Init has returned, all primitives may be
// invoked concurrently as long as concurrent calls target distinct
// queues/pools. Init and Cleanup must be serialized by the caller.

package api

// PoolHandle is an opaque reference to one native buffer arena.
type PoolHandle uint64

// PacketHandle is an opaque reference to one native packet buffer.
type PacketHandle uint64

// Capability is the full native-primitive surface this library wraps.
// Implementations: a cgo binding against the real hardware runtime, or
// the in-memory fake used by tests and examples.
type Capability interface {
	// Init performs one-time runtime initialization. It consumes a prefix
	// of args and returns how many entries were consumed. A returned error
	// corresponds to a negative native status.
	Init(args []string) (consumed int, err error)

	// Cleanup tears the runtime down. ErrNotSupported is a valid outcome
	// for driver configurations that never implement teardown.
	Cleanup() error

	// Cores lists the enabled logical cores.
	Cores() []CoreID

	// CoreSocket reports the NUMA node a core belongs to.
	CoreSocket(core CoreID) SocketID

	// Ports lists the valid hardware port identifiers.
	Ports() []uint16

	// PortSocket reports the NUMA node a port's device sits on.
	PortSocket(port uint16) SocketID

	// PortInfo reports queue and descriptor limits for a port.
	PortInfo(port uint16) (DeviceInfo, error)

	// PortMAC reports the port's hardware address.
	PortMAC(port uint16) ([6]byte, error)

	// TakeOwnership records owner as the port's configuring entity.
	// Fails with ErrPortOwned if someone else got there first.
	TakeOwnership(port uint16, owner string) error

	// ReleaseOwnership clears the ownership record.
	ReleaseOwnership(port uint16) error

	// ConfigurePort applies the queue-count and offload configuration.
	ConfigurePort(port uint16, conf PortConfig) error

	// SetupRxQueue binds RX queue `queue` of `port` to a descriptor ring of
	// `descriptors` slots on `socket`, drawing buffers from `pool`.
	SetupRxQueue(port, queue uint16, descriptors uint16, socket SocketID, pool PoolHandle) error

	// SetupTxQueue binds TX queue `queue` of `port` to a descriptor ring of
	// `descriptors` slots on `socket`.
	SetupTxQueue(port, queue uint16, descriptors uint16, socket SocketID) error

	// StopRxQueue / StopTxQueue halt one queue. ErrNotSupported is a
	// non-fatal driver gap.
	StopRxQueue(port, queue uint16) error
	StopTxQueue(port, queue uint16) error

	// EnablePromiscuous turns promiscuous mode on.
	EnablePromiscuous(port uint16) error

	// StartPort / StopPort / ClosePort drive the device lifecycle.
	StartPort(port uint16) error
	StopPort(port uint16) error
	ClosePort(port uint16) error

	// StatsGet reads raw cumulative counters for a port.
	StatsGet(port uint16) (PortStats, error)

	// StatsReset zeroes the hardware counters. ErrNotSupported means the
	// caller must emulate resets in software.
	StatsReset(port uint16) error

	// CreatePool allocates a named buffer arena on a socket. Names are
	// global to the process; ErrAlreadyExists reports a collision.
	CreatePool(name string, conf PoolConfig, socket SocketID) (PoolHandle, error)

	// FreePool releases an arena. ErrPoolBusy means buffers are still
	// outstanding and release must be retried later.
	FreePool(pool PoolHandle) error

	// Alloc draws one buffer from the pool's free list; ok is false when
	// the pool is exhausted.
	Alloc(pool PoolHandle) (PacketHandle, bool)

	// AllocBulk draws exactly n buffers or none (the native layer is
	// all-or-nothing for bulk draws).
	AllocBulk(pool PoolHandle, n int) ([]PacketHandle, bool)

	// FreePacket returns a buffer to its native free list, or decrements
	// its reference count if above one.
	FreePacket(pkt PacketHandle)

	// RefCntUpdate adjusts a packet's native reference count by delta.
	RefCntUpdate(pkt PacketHandle, delta int16)

	// PacketBuf exposes the packet's full data room for zero-copy access.
	PacketBuf(pkt PacketHandle) []byte

	// PacketMeta reads the packet's current headroom and payload length.
	PacketMeta(pkt PacketHandle) (headroom, length int)

	// SetPacketMeta writes the packet's headroom and payload length.
	SetPacketMeta(pkt PacketHandle, headroom, length int)

	// RxBurst fills pkts with up to len(pkts) received packets from one
	// queue and returns the count. Zero is normal backpressure.
	RxBurst(port, queue uint16, pkts []PacketHandle) int

	// TxBurst transmits a prefix of pkts from one queue and returns how
	// many were accepted. Accepted packets are consumed (freed or queued)
	// by the native layer; the rest remain owned by the caller.
	TxBurst(port, queue uint16, pkts []PacketHandle) int
}
