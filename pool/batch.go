// File: pool/batch.go — zero-alloc batching without locks.
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity batch of packets for burst receive/transmit. NOT
// thread-safe; each batch belongs to exactly one core's hot path.

package pool

// PacketBatch is a minimal zero-alloc batch of packets.
type PacketBatch struct {
	pkts []*Packet
}

// NewPacketBatch creates a batch with the given capacity.
func NewPacketBatch(capacity int) *PacketBatch {
	return &PacketBatch{pkts: make([]*Packet, 0, capacity)}
}

// Append adds a packet to the batch.
func (b *PacketBatch) Append(p *Packet) {
	b.pkts = append(b.pkts, p)
}

// Len returns the number of packets in the batch.
func (b *PacketBatch) Len() int { return len(b.pkts) }

// Cap returns the batch capacity.
func (b *PacketBatch) Cap() int { return cap(b.pkts) }

// Get retrieves the packet at idx.
func (b *PacketBatch) Get(idx int) *Packet { return b.pkts[idx] }

// Slice returns the underlying slice. Callers must not grow it.
func (b *PacketBatch) Slice() []*Packet { return b.pkts }

// Truncate shortens the batch to n packets without freeing anything.
func (b *PacketBatch) Truncate(n int) { b.pkts = b.pkts[:n] }

// Reset empties the batch without freeing anything.
func (b *PacketBatch) Reset() { b.pkts = b.pkts[:0] }

// FreeAll frees every packet and empties the batch.
func (b *PacketBatch) FreeAll() {
	for _, p := range b.pkts {
		p.Free()
	}
	b.pkts = b.pkts[:0]
}
