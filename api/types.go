// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Core identity, NUMA topology and port configuration value types shared
// across the library. All of them are plain values; ownership semantics
// live in the nic and pool packages.

package api

// CoreID identifies one logical execution unit recognized by the
// capability layer. Immutable once discovered.
type CoreID uint32

// SocketID identifies one NUMA node. Used purely for locality grouping.
type SocketID int32

// SocketAny requests allocation without NUMA preference.
const SocketAny SocketID = -1

// AffinityPolicy selects which cores may host a port's queues for one
// traffic direction.
type AffinityPolicy int

const (
	// PolicyFull spreads queues across every enabled core.
	PolicyFull AffinityPolicy = iota
	// PolicyNumaLocal restricts queues to cores sharing the port's NUMA node.
	PolicyNumaLocal
)

// String implements fmt.Stringer.
func (p AffinityPolicy) String() string {
	switch p {
	case PolicyFull:
		return "full"
	case PolicyNumaLocal:
		return "numa-local"
	default:
		return "unknown"
	}
}

// DeviceInfo reports a port's hardware limits as advertised by the driver.
type DeviceInfo struct {
	MaxRxQueues uint16
	MaxTxQueues uint16

	MinRxDescriptors uint16
	MaxRxDescriptors uint16
	RxDescAlign      uint16

	MinTxDescriptors uint16
	MaxTxDescriptors uint16
	TxDescAlign      uint16

	// Offload capability bits advertised by the driver.
	RxOffloads uint64
	TxOffloads uint64
}

// Offload capability flags. Values mirror the capability layer's contract.
const (
	OffloadRxIPv4Cksum uint64 = 1 << iota
	OffloadRxTCPCksum
	OffloadRxUDPCksum
	OffloadTxIPv4Cksum
	OffloadTxTCPCksum
	OffloadTxUDPCksum
)

// PortConfig is the hardware configuration applied to a port before its
// queues are set up.
type PortConfig struct {
	NumRxQueues uint16
	NumTxQueues uint16

	// RSSIPv4 enables receive-side scaling hashed on IPv4 TCP/UDP headers.
	// Only meaningful when NumRxQueues > 1.
	RSSIPv4 bool

	// Offload bits to enable; must be a subset of DeviceInfo capabilities.
	RxOffloads uint64
	TxOffloads uint64
}

// PortStats holds raw or delta packet/byte/error counters for one port.
// Whether the values are "since last reset" depends on the caller: the
// capability layer always reports raw counters, the Port wrapper converts
// them into deltas when hardware reset is unavailable.
type PortStats struct {
	InPackets  uint64
	OutPackets uint64
	InBytes    uint64
	OutBytes   uint64
	InErrors   uint64
	OutErrors  uint64
	InMissed   uint64
}

// Sub returns s - o field by field. Used for software-emulated resets.
func (s PortStats) Sub(o PortStats) PortStats {
	return PortStats{
		InPackets:  s.InPackets - o.InPackets,
		OutPackets: s.OutPackets - o.OutPackets,
		InBytes:    s.InBytes - o.InBytes,
		OutBytes:   s.OutBytes - o.OutBytes,
		InErrors:   s.InErrors - o.InErrors,
		OutErrors:  s.OutErrors - o.OutErrors,
		InMissed:   s.InMissed - o.InMissed,
	}
}

// PoolConfig sizes one packet-buffer pool.
type PoolConfig struct {
	// Count is the number of buffers in the pool.
	Count uint32
	// CacheSize is the per-core free-list cache size.
	CacheSize uint32
	// DataRoomSize is the usable byte capacity of each buffer.
	DataRoomSize uint32
}

// Pool sizing defaults, tuned for a single RX queue at line rate.
const (
	DefaultRxPoolSize    uint32 = 8192
	DefaultPerCoreCache  uint32 = 256
	DefaultDataRoomSize  uint32 = 2048
	DefaultBurstSize            = 32
	DefaultRxDescriptors uint16 = 1024
	DefaultTxDescriptors uint16 = 1024
)

// DefaultPoolConfig returns the stock RX pool sizing.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Count:        DefaultRxPoolSize,
		CacheSize:    DefaultPerCoreCache,
		DataRoomSize: DefaultDataRoomSize,
	}
}
