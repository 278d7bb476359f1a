// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Lock-free fixed-capacity ring for cross-thread handle transfer. Backs
// the in-memory capability layer's descriptor rings. Safe for one
// producer and one consumer running concurrently; multiple producers or
// consumers need external serialization. Internal padding minimizes
// cache contention.

package pool

import (
	"sync/atomic"
)

// Ring is a lock-free fixed-capacity ring buffer (power-of-two size).
type Ring[T any] struct {
	data []T
	mask uint64
	head uint64
	tail uint64
	_    [64]byte // Padding for hot/cold separation
}

// NewRing allocates a ring with size slots (must be a power of two).
func NewRing[T any](size uint64) *Ring[T] {
	if size == 0 || (size&(size-1)) != 0 {
		panic("ring size must be power of two")
	}
	return &Ring[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Enqueue adds one item; returns false if full.
func (r *Ring[T]) Enqueue(val T) bool {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if (tail - head) == uint64(len(r.data)) {
		return false
	}
	r.data[tail&r.mask] = val
	atomic.AddUint64(&r.tail, 1)
	return true
}

// Dequeue removes and returns (item, ok); ok==false if empty.
func (r *Ring[T]) Dequeue() (res T, ok bool) {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if head == tail {
		return res, false
	}
	res = r.data[head&r.mask]
	atomic.AddUint64(&r.head, 1)
	return res, true
}

// EnqueueBurst adds up to len(vals) items and returns how many fit.
// Burst semantics match the hardware descriptor rings this ring stands
// in for: a short count is backpressure, not an error.
func (r *Ring[T]) EnqueueBurst(vals []T) int {
	n := 0
	for _, v := range vals {
		if !r.Enqueue(v) {
			break
		}
		n++
	}
	return n
}

// DequeueBurst fills up to len(out) items and returns the count.
func (r *Ring[T]) DequeueBurst(out []T) int {
	n := 0
	for i := range out {
		v, ok := r.Dequeue()
		if !ok {
			break
		}
		out[i] = v
		n++
	}
	return n
}

// Len returns the number of items in the ring.
func (r *Ring[T]) Len() int {
	return int(atomic.LoadUint64(&r.tail) - atomic.LoadUint64(&r.head))
}

// Cap returns the logical ring capacity.
func (r *Ring[T]) Cap() int {
	return len(r.data)
}
