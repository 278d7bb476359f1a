// File: fake/capability.go
// Author: momentics <momentics@gmail.com>
//
// In-memory implementation of api.Capability for tests and examples.
// Ports are wired in loopback: packets accepted by TxBurst are copied
// into a buffer from the receiving queue's pool and delivered to that
// port's RX rings round-robin. Pools, reference counts and statistics
// behave like the real layer, including its lack of safety checks.

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/pool"
)

// PortSpec describes one fake hardware port.
type PortSpec struct {
	Socket api.SocketID

	// Info defaults to generous limits when zero.
	Info api.DeviceInfo

	// StatsResetSupported controls whether StatsReset succeeds or
	// reports a driver gap.
	StatsResetSupported bool

	// QueueStopSupported controls StopRxQueue/StopTxQueue.
	QueueStopSupported bool

	// TxAcceptLimit caps how many packets one TxBurst call accepts.
	// Zero means no artificial limit.
	TxAcceptLimit int
}

// Config describes the fake topology.
type Config struct {
	// CoreSockets maps core ID (the slice index) to its NUMA node.
	CoreSockets []api.SocketID

	Ports []PortSpec

	// CleanupSupported controls whether Cleanup succeeds or reports the
	// "not implemented" sentinel.
	CleanupSupported bool
}

// defaultInfo mirrors a mid-range NIC.
var defaultInfo = api.DeviceInfo{
	MaxRxQueues:      16,
	MaxTxQueues:      16,
	MinRxDescriptors: 64,
	MaxRxDescriptors: 4096,
	RxDescAlign:      32,
	MinTxDescriptors: 64,
	MaxTxDescriptors: 4096,
	TxDescAlign:      32,
	RxOffloads:       api.OffloadRxIPv4Cksum | api.OffloadRxTCPCksum,
	TxOffloads:       api.OffloadTxIPv4Cksum | api.OffloadTxTCPCksum,
}

type fakePacket struct {
	pool     api.PoolHandle
	buf      []byte
	headroom int
	length   int
	refcnt   int
}

type fakePool struct {
	name        string
	conf        api.PoolConfig
	free        *pool.Ring[api.PacketHandle]
	outstanding int
}

type rxRing struct {
	ring *pool.Ring[api.PacketHandle]
	pool api.PoolHandle
}

type fakePort struct {
	spec       PortSpec
	owner      string
	conf       api.PortConfig
	configured bool
	started    bool
	promisc    bool
	closedDev  bool

	rx     []*rxRing
	txSet  []bool
	nextRx int // round-robin delivery cursor

	stats api.PortStats
}

// Capability is the in-memory fake. Control-plane state is guarded by a
// single mutex; burst primitives take it too, which is slower than real
// hardware but keeps the fake obviously correct.
type Capability struct {
	mu          sync.Mutex
	cfg         Config
	initialized bool
	cleaned     bool

	ports map[uint16]*fakePort

	nextPool   api.PoolHandle
	pools      map[api.PoolHandle]*fakePool
	poolByName map[string]api.PoolHandle

	nextPacket api.PacketHandle
	packets    map[api.PacketHandle]*fakePacket

	ops map[string]int
}

// New builds a fake capability layer from cfg.
func New(cfg Config) *Capability {
	c := &Capability{
		cfg:        cfg,
		ports:      make(map[uint16]*fakePort),
		pools:      make(map[api.PoolHandle]*fakePool),
		poolByName: make(map[string]api.PoolHandle),
		packets:    make(map[api.PacketHandle]*fakePacket),
		ops:        make(map[string]int),
	}
	for i, spec := range cfg.Ports {
		if spec.Info == (api.DeviceInfo{}) {
			spec.Info = defaultInfo
		}
		c.ports[uint16(i)] = &fakePort{spec: spec}
	}
	return c
}

// Ops reports how many times a control-plane primitive ran, keyed by
// method name. Lets tests assert that no hardware was touched.
func (c *Capability) Ops(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ops[name]
}

// Outstanding reports how many packets are currently allocated across
// all pools. Zero after teardown means no leaked native handles.
func (c *Capability) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.pools {
		n += p.outstanding
	}
	return n
}

// PoolCount reports how many arenas are still live.
func (c *Capability) PoolCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pools)
}

func (c *Capability) op(name string) { c.ops[name]++ }

// Init consumes the argument prefix up to and including a "--" separator
// (or everything when absent), like the real runtime's argument parser.
func (c *Capability) Init(args []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return 0, api.NewError(api.ErrCodeAlreadyInitialized, "capability already initialized")
	}
	c.initialized = true
	c.op("Init")
	for i, a := range args {
		if a == "--" {
			return i + 1, nil
		}
	}
	return len(args), nil
}

// Cleanup tears the fake down, or reports the unsupported sentinel.
func (c *Capability) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.CleanupSupported {
		return api.ErrNotSupported
	}
	c.cleaned = true
	c.op("Cleanup")
	return nil
}

// Cores lists the enabled cores: 0..len(CoreSockets)-1.
func (c *Capability) Cores() []api.CoreID {
	out := make([]api.CoreID, len(c.cfg.CoreSockets))
	for i := range out {
		out[i] = api.CoreID(i)
	}
	return out
}

// CoreSocket reports the configured NUMA node for a core.
func (c *Capability) CoreSocket(core api.CoreID) api.SocketID {
	if int(core) >= len(c.cfg.CoreSockets) {
		return api.SocketAny
	}
	return c.cfg.CoreSockets[core]
}

// Ports lists the valid port identifiers in ascending order.
func (c *Capability) Ports() []uint16 {
	out := make([]uint16, len(c.cfg.Ports))
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}

// PortSocket reports the configured NUMA node for a port.
func (c *Capability) PortSocket(port uint16) api.SocketID {
	p, ok := c.ports[port]
	if !ok {
		return api.SocketAny
	}
	return p.spec.Socket
}

// PortInfo reports the configured device limits.
func (c *Capability) PortInfo(port uint16) (api.DeviceInfo, error) {
	p, err := c.port(port)
	if err != nil {
		return api.DeviceInfo{}, err
	}
	return p.spec.Info, nil
}

// PortMAC derives a stable address from the port number.
func (c *Capability) PortMAC(port uint16) ([6]byte, error) {
	if _, err := c.port(port); err != nil {
		return [6]byte{}, err
	}
	return [6]byte{0x02, 0x00, 0x00, 0x00, byte(port >> 8), byte(port)}, nil
}

func (c *Capability) port(port uint16) (*fakePort, error) {
	p, ok := c.ports[port]
	if !ok {
		return nil, fmt.Errorf("fake: no such port %d", port)
	}
	return p, nil
}

// TakeOwnership records the owner tag, rejecting second owners.
func (c *Capability) TakeOwnership(port uint16, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	if p.owner != "" && p.owner != owner {
		return api.ErrPortOwned
	}
	p.owner = owner
	c.op("TakeOwnership")
	return nil
}

// ReleaseOwnership clears the owner tag.
func (c *Capability) ReleaseOwnership(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	p.owner = ""
	c.op("ReleaseOwnership")
	return nil
}

// ConfigurePort records the queue-count and offload configuration.
func (c *Capability) ConfigurePort(port uint16, conf api.PortConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	p.conf = conf
	p.configured = true
	p.rx = make([]*rxRing, conf.NumRxQueues)
	p.txSet = make([]bool, conf.NumTxQueues)
	c.op("ConfigurePort")
	return nil
}

// SetupRxQueue creates the queue's descriptor ring and binds its pool.
func (c *Capability) SetupRxQueue(port, queue uint16, descriptors uint16, socket api.SocketID, ph api.PoolHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	if !p.configured || int(queue) >= len(p.rx) {
		return fmt.Errorf("fake: port %d rxq %d not configured", port, queue)
	}
	if _, ok := c.pools[ph]; !ok {
		return fmt.Errorf("fake: port %d rxq %d: unknown pool handle", port, queue)
	}
	p.rx[queue] = &rxRing{ring: pool.NewRing[api.PacketHandle](nextPow2(uint64(descriptors))), pool: ph}
	c.op("SetupRxQueue")
	return nil
}

// SetupTxQueue creates the queue's descriptor ring.
func (c *Capability) SetupTxQueue(port, queue uint16, descriptors uint16, socket api.SocketID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	if !p.configured || int(queue) >= len(p.txSet) {
		return fmt.Errorf("fake: port %d txq %d not configured", port, queue)
	}
	p.txSet[queue] = true
	c.op("SetupTxQueue")
	return nil
}

// StopRxQueue halts one RX queue, or reports the driver gap.
func (c *Capability) StopRxQueue(port, queue uint16) error {
	return c.stopQueue(port)
}

// StopTxQueue halts one TX queue, or reports the driver gap.
func (c *Capability) StopTxQueue(port, queue uint16) error {
	return c.stopQueue(port)
}

func (c *Capability) stopQueue(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	if !p.spec.QueueStopSupported {
		return api.ErrNotSupported
	}
	c.op("StopQueue")
	return nil
}

// EnablePromiscuous turns promiscuous mode on.
func (c *Capability) EnablePromiscuous(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	p.promisc = true
	c.op("EnablePromiscuous")
	return nil
}

// StartPort brings the device up.
func (c *Capability) StartPort(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	p.started = true
	c.op("StartPort")
	return nil
}

// StopPort brings the device down and, like the real driver, releases
// every buffer still sitting in the RX descriptor rings.
func (c *Capability) StopPort(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	p.started = false
	for _, rq := range p.rx {
		if rq == nil {
			continue
		}
		for {
			ph, ok := rq.ring.Dequeue()
			if !ok {
				break
			}
			c.freeLocked(ph)
		}
	}
	c.op("StopPort")
	return nil
}

// ClosePort releases the device.
func (c *Capability) ClosePort(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	p.closedDev = true
	c.op("ClosePort")
	return nil
}

// StatsGet reads raw cumulative counters.
func (c *Capability) StatsGet(port uint16) (api.PortStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return api.PortStats{}, err
	}
	return p.stats, nil
}

// StatsReset zeroes counters, or reports the driver gap.
func (c *Capability) StatsReset(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil {
		return err
	}
	if !p.spec.StatsResetSupported {
		return api.ErrNotSupported
	}
	p.stats = api.PortStats{}
	c.op("StatsReset")
	return nil
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
