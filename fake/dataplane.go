// File: fake/dataplane.go
// Author: momentics <momentics@gmail.com>
//
// Pool, packet and burst primitives of the fake capability layer. This
// side reproduces the native layer's ownership rules exactly: pools have
// no borrow tracking, FreePool fails while buffers are outstanding, and
// TxBurst consumes whatever it accepts.

package fake

import (
	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/pool"
)

// CreatePool allocates an arena and pre-populates its free list.
func (c *Capability) CreatePool(name string, conf api.PoolConfig, socket api.SocketID) (api.PoolHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.poolByName[name]; ok {
		return 0, api.ErrAlreadyExists
	}
	c.nextPool++
	h := c.nextPool
	fp := &fakePool{
		name: name,
		conf: conf,
		free: pool.NewRing[api.PacketHandle](nextPow2(uint64(conf.Count))),
	}
	for i := uint32(0); i < conf.Count; i++ {
		c.nextPacket++
		ph := c.nextPacket
		c.packets[ph] = &fakePacket{
			pool: h,
			buf:  make([]byte, conf.DataRoomSize),
		}
		fp.free.Enqueue(ph)
	}
	c.pools[h] = fp
	c.poolByName[name] = h
	c.op("CreatePool")
	return h, nil
}

// FreePool releases an arena, failing with ErrPoolBusy while any of its
// buffers are outstanding.
func (c *Capability) FreePool(h api.PoolHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fp, ok := c.pools[h]
	if !ok {
		return api.NewError(api.ErrCodeInternal, "free of unknown pool handle")
	}
	if fp.outstanding != 0 {
		return api.ErrPoolBusy
	}
	for ph, pkt := range c.packets {
		if pkt.pool == h {
			delete(c.packets, ph)
		}
	}
	delete(c.poolByName, fp.name)
	delete(c.pools, h)
	c.op("FreePool")
	return nil
}

// Alloc draws one buffer from the pool's free list.
func (c *Capability) Alloc(h api.PoolHandle) (api.PacketHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocLocked(h)
}

func (c *Capability) allocLocked(h api.PoolHandle) (api.PacketHandle, bool) {
	fp, ok := c.pools[h]
	if !ok {
		return 0, false
	}
	ph, ok := fp.free.Dequeue()
	if !ok {
		return 0, false
	}
	pkt := c.packets[ph]
	pkt.refcnt = 1
	pkt.headroom = pool.DefaultHeadroom
	if pkt.headroom > len(pkt.buf) {
		pkt.headroom = len(pkt.buf)
	}
	pkt.length = 0
	fp.outstanding++
	return ph, true
}

// AllocBulk draws exactly n buffers or none.
func (c *Capability) AllocBulk(h api.PoolHandle, n int) ([]api.PacketHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fp, ok := c.pools[h]
	if !ok || fp.free.Len() < n {
		return nil, false
	}
	out := make([]api.PacketHandle, n)
	for i := range out {
		ph, _ := c.allocLocked(h)
		out[i] = ph
	}
	return out, true
}

// FreePacket drops one reference, returning the buffer to its free list
// at zero.
func (c *Capability) FreePacket(ph api.PacketHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freeLocked(ph)
}

func (c *Capability) freeLocked(ph api.PacketHandle) {
	pkt, ok := c.packets[ph]
	if !ok {
		return
	}
	pkt.refcnt--
	if pkt.refcnt > 0 {
		return
	}
	fp := c.pools[pkt.pool]
	fp.outstanding--
	fp.free.Enqueue(ph)
}

// RefCntUpdate adjusts a packet's reference count.
func (c *Capability) RefCntUpdate(ph api.PacketHandle, delta int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pkt, ok := c.packets[ph]; ok {
		pkt.refcnt += int(delta)
	}
}

// PacketBuf exposes the packet's full data room.
func (c *Capability) PacketBuf(ph api.PacketHandle) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pkt, ok := c.packets[ph]; ok {
		return pkt.buf
	}
	return nil
}

// PacketMeta reads headroom and payload length.
func (c *Capability) PacketMeta(ph api.PacketHandle) (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pkt, ok := c.packets[ph]; ok {
		return pkt.headroom, pkt.length
	}
	return 0, 0
}

// SetPacketMeta writes headroom and payload length.
func (c *Capability) SetPacketMeta(ph api.PacketHandle, headroom, length int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pkt, ok := c.packets[ph]; ok {
		pkt.headroom = headroom
		pkt.length = length
	}
}

// RxBurst drains up to len(pkts) packets from one RX ring.
func (c *Capability) RxBurst(port, queue uint16, pkts []api.PacketHandle) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil || !p.started || int(queue) >= len(p.rx) || p.rx[queue] == nil {
		return 0
	}
	return p.rx[queue].ring.DequeueBurst(pkts)
}

// TxBurst accepts a prefix of pkts and loops each accepted packet back
// into one of the port's RX queues, copying the payload into a buffer
// from that queue's pool. Accepted packets are consumed: the native
// layer drops its reference whether or not delivery succeeded.
func (c *Capability) TxBurst(port, queue uint16, pkts []api.PacketHandle) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.port(port)
	if err != nil || !p.started || int(queue) >= len(p.txSet) || !p.txSet[queue] {
		return 0
	}
	accept := len(pkts)
	if p.spec.TxAcceptLimit > 0 && accept > p.spec.TxAcceptLimit {
		accept = p.spec.TxAcceptLimit
	}
	for _, ph := range pkts[:accept] {
		pkt := c.packets[ph]
		p.stats.OutPackets++
		p.stats.OutBytes += uint64(pkt.length)
		c.deliverLocked(p, pkt)
		c.freeLocked(ph)
	}
	return accept
}

// deliverLocked copies one transmitted payload into the port's next RX
// queue, round-robin. Without an RX queue, or with its pool exhausted or
// ring full, the packet counts as missed.
func (c *Capability) deliverLocked(p *fakePort, src *fakePacket) {
	if len(p.rx) == 0 {
		return
	}
	rq := p.rx[p.nextRx%len(p.rx)]
	p.nextRx++
	if rq == nil {
		p.stats.InMissed++
		return
	}
	ph, ok := c.allocLocked(rq.pool)
	if !ok {
		p.stats.InMissed++
		return
	}
	dst := c.packets[ph]
	if src.length > len(dst.buf)-dst.headroom {
		dst.headroom = 0
	}
	dst.length = src.length
	copy(dst.buf[dst.headroom:], src.buf[src.headroom:src.headroom+src.length])
	if !rq.ring.Enqueue(ph) {
		c.freeLocked(ph)
		p.stats.InMissed++
		return
	}
	p.stats.InPackets++
	p.stats.InBytes += uint64(src.length)
}
