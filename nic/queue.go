// File: nic/queue.go
// Author: momentics <momentics@gmail.com>
//
// Receive and transmit queues over the capability layer's burst
// primitives. Transmit reconciles the "how many succeeded" burst count
// with per-buffer ownership: sent packets belong to the native layer,
// unsent ones are freed here, and the caller's batch always ends empty.

package nic

import (
	"errors"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/logging"
	"github.com/momentics/hioload-nic/pool"
)

// RxQueue is one receive queue bound to a port. It owns a dedicated pool
// the hardware draws receive buffers from.
type RxQueue struct {
	capa    api.Capability
	port    *Port
	index   uint16
	pool    *pool.Pool
	scratch []api.PacketHandle
	closed  bool
}

// Port returns the queue's port.
func (q *RxQueue) Port() *Port { return q.port }

// Index returns the hardware queue index.
func (q *RxQueue) Index() uint16 { return q.index }

// Pool returns the queue's dedicated buffer pool.
func (q *RxQueue) Pool() *pool.Pool { return q.pool }

// Receive appends up to the batch's remaining capacity of newly received
// packets and returns how many arrived. Zero means no input ready, not
// an error; busy-polling is the caller's choice.
func (q *RxQueue) Receive(batch *pool.PacketBatch) int {
	room := batch.Cap() - batch.Len()
	if room == 0 {
		return 0
	}
	if cap(q.scratch) < room {
		q.scratch = make([]api.PacketHandle, room)
	}
	handles := q.scratch[:room]
	n := q.capa.RxBurst(q.port.id, q.index, handles)
	for _, h := range handles[:n] {
		batch.Append(pool.Wrap(q.capa, h))
	}
	return n
}

// close stops the hardware queue and releases the dedicated pool. A
// driver that cannot stop individual queues is expected variance.
func (q *RxQueue) close() {
	if q.closed {
		return
	}
	q.closed = true
	if err := q.capa.StopRxQueue(q.port.id, q.index); err != nil {
		if errors.Is(err, api.ErrNotSupported) {
			logging.Warnf("nic: port %d rxq %d: queue stop unsupported", q.port.id, q.index)
		} else {
			logging.Warnf("nic: port %d rxq %d: stop failed: %v", q.port.id, q.index, err)
		}
	}
	q.pool.Close()
}

// TxQueue is one transmit queue bound to a port. It owns no pool: it
// transmits buffers it did not allocate.
type TxQueue struct {
	capa    api.Capability
	port    *Port
	index   uint16
	scratch []api.PacketHandle
	closed  bool
}

// Port returns the queue's port.
func (q *TxQueue) Port() *Port { return q.port }

// Index returns the hardware queue index.
func (q *TxQueue) Index() uint16 { return q.index }

// Transmit sends the batch. Packets the hardware accepted are consumed
// by the native layer; the rest are freed here, so every packet is
// either sent or released and the batch always ends at length zero.
// Returns the number accepted.
func (q *TxQueue) Transmit(batch *pool.PacketBatch) int {
	n := batch.Len()
	if n == 0 {
		return 0
	}
	sent := q.capa.TxBurst(q.port.id, q.index, q.handles(batch))
	for _, p := range batch.Slice()[sent:] {
		p.Free()
	}
	batch.Reset()
	return sent
}

// TransmitCloned sends the batch while the caller retains ownership of
// every packet: each native reference count is incremented first, and
// the extra reference on packets the hardware rejected is dropped here.
// The batch is left untouched. Returns the number accepted.
func (q *TxQueue) TransmitCloned(batch *pool.PacketBatch) int {
	n := batch.Len()
	if n == 0 {
		return 0
	}
	for _, p := range batch.Slice() {
		q.capa.RefCntUpdate(p.Handle(), 1)
	}
	sent := q.capa.TxBurst(q.port.id, q.index, q.handles(batch))
	for _, p := range batch.Slice()[sent:] {
		q.capa.FreePacket(p.Handle())
	}
	return sent
}

func (q *TxQueue) handles(batch *pool.PacketBatch) []api.PacketHandle {
	n := batch.Len()
	if cap(q.scratch) < n {
		q.scratch = make([]api.PacketHandle, n)
	}
	hs := q.scratch[:n]
	for i, p := range batch.Slice() {
		hs[i] = p.Handle()
	}
	return hs
}

func (q *TxQueue) close() {
	if q.closed {
		return
	}
	q.closed = true
	if err := q.capa.StopTxQueue(q.port.id, q.index); err != nil {
		if errors.Is(err, api.ErrNotSupported) {
			logging.Warnf("nic: port %d txq %d: queue stop unsupported", q.port.id, q.index)
		} else {
			logging.Warnf("nic: port %d txq %d: stop failed: %v", q.port.id, q.index, err)
		}
	}
}
