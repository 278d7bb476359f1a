// File: pool/packet.go
// Author: momentics <momentics@gmail.com>
//
// Packet wraps one native buffer borrowed from a Pool. It maintains the
// headroom/length view over the buffer's data room and mirrors every
// mutation into the native layer so burst primitives see current lengths.
//
// Invariant: [headroom, headroom+length) always lies within [0, capacity).
// Violating it is an internal consistency bug and panics.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-nic/api"
)

// DefaultHeadroom is the byte gap reserved in front of fresh payloads so
// headers can be prepended without moving data.
const DefaultHeadroom = 128

// Packet is a single buffer borrowed from a pool. It must not outlive the
// Pool it was drawn from; the native layer cannot enforce this, so it is a
// documented caller obligation.
type Packet struct {
	capa     api.Capability
	handle   api.PacketHandle
	buf      []byte
	headroom int
	length   int
}

// Wrap builds a Packet view over a native handle, reading the current
// headroom/length metadata from the capability layer. Used by receive
// paths that obtain handles from burst primitives.
func Wrap(capa api.Capability, h api.PacketHandle) *Packet {
	headroom, length := capa.PacketMeta(h)
	return &Packet{
		capa:     capa,
		handle:   h,
		buf:      capa.PacketBuf(h),
		headroom: headroom,
		length:   length,
	}
}

// Handle returns the native handle backing this packet.
func (p *Packet) Handle() api.PacketHandle { return p.handle }

// Capacity returns the total byte capacity of the data room.
func (p *Packet) Capacity() int { return len(p.buf) }

// Len returns the current payload length.
func (p *Packet) Len() int { return p.length }

// Headroom returns the bytes reserved before the payload.
func (p *Packet) Headroom() int { return p.headroom }

// Tailroom returns the bytes available after the payload.
func (p *Packet) Tailroom() int { return len(p.buf) - p.headroom - p.length }

// Data returns the writable payload view [headroom, headroom+length).
func (p *Packet) Data() []byte {
	return p.buf[p.headroom : p.headroom+p.length]
}

// SetLen resizes the payload to n bytes. Panics when n does not fit the
// remaining capacity behind the headroom.
func (p *Packet) SetLen(n int) {
	if n < 0 || p.headroom+n > len(p.buf) {
		panic(fmt.Sprintf("pool: SetLen(%d) exceeds capacity %d with headroom %d",
			n, len(p.buf), p.headroom))
	}
	p.length = n
	p.flush()
}

// TrimHead discards n bytes from the front of the payload, growing the
// headroom. Panics when n exceeds the payload length.
func (p *Packet) TrimHead(n int) {
	if n < 0 || n > p.length {
		panic(fmt.Sprintf("pool: TrimHead(%d) with length %d", n, p.length))
	}
	p.headroom += n
	p.length -= n
	p.flush()
}

// TrimTail discards n bytes from the end of the payload. Panics when n
// exceeds the payload length.
func (p *Packet) TrimTail(n int) {
	if n < 0 || n > p.length {
		panic(fmt.Sprintf("pool: TrimTail(%d) with length %d", n, p.length))
	}
	p.length -= n
	p.flush()
}

// Prepend grows the payload by n bytes at the front, consuming headroom,
// and returns the newly exposed region. Panics when the headroom is too
// small.
func (p *Packet) Prepend(n int) []byte {
	if n < 0 || n > p.headroom {
		panic(fmt.Sprintf("pool: Prepend(%d) with headroom %d", n, p.headroom))
	}
	p.headroom -= n
	p.length += n
	p.flush()
	return p.buf[p.headroom : p.headroom+n]
}

// Append grows the payload by n bytes at the tail and returns the newly
// exposed region. Panics when the tailroom is too small.
func (p *Packet) Append(n int) []byte {
	if n < 0 || n > p.Tailroom() {
		panic(fmt.Sprintf("pool: Append(%d) with tailroom %d", n, p.Tailroom()))
	}
	off := p.headroom + p.length
	p.length += n
	p.flush()
	return p.buf[off : off+n]
}

// ResetHeadroom restores the default headroom and empties the payload,
// returning the packet to its freshly allocated shape.
func (p *Packet) ResetHeadroom() {
	headroom := DefaultHeadroom
	if headroom > len(p.buf) {
		headroom = len(p.buf)
	}
	p.headroom = headroom
	p.length = 0
	p.flush()
}

// Free returns the buffer to its native free list (or drops one reference
// when the native refcount is above one). The Packet must not be used
// afterwards.
func (p *Packet) Free() {
	p.capa.FreePacket(p.handle)
	p.buf = nil
}

func (p *Packet) flush() {
	p.capa.SetPacketMeta(p.handle, p.headroom, p.length)
}
