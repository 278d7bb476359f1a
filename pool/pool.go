// File: pool/pool.go
// Author: momentics <momentics@gmail.com>
//
// Pool wraps one native packet-buffer arena. The native layer has no
// notion of outstanding borrows, so release is attempted eagerly and
// handed to the runtime's deferred-collection queue when buffers are
// still in flight.

package pool

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-nic/api"
)

// Deferrer accepts release work that could not complete immediately.
// retry returns true once the underlying resource is actually gone.
// Implemented by nic.Runtime.
type Deferrer interface {
	DeferRelease(name string, retry func() bool)
}

// Pool is one packet-buffer arena. Packets drawn from it must be freed
// before the arena can be released; Close defers the release when they
// are not.
type Pool struct {
	capa   api.Capability
	def    Deferrer
	handle api.PoolHandle
	name   string
	closed bool
}

// NewPool creates a named arena on the given socket. A name collision in
// the capability layer's global namespace is a programmer error and
// panics; other native failures are returned.
func NewPool(capa api.Capability, def Deferrer, name string, conf api.PoolConfig, socket api.SocketID) (*Pool, error) {
	h, err := capa.CreatePool(name, conf, socket)
	if err != nil {
		if errors.Is(err, api.ErrAlreadyExists) {
			panic(fmt.Sprintf("pool: name %q already exists", name))
		}
		return nil, err
	}
	return &Pool{capa: capa, def: def, handle: h, name: name}, nil
}

// Name returns the arena's global name.
func (p *Pool) Name() string { return p.name }

// Handle returns the native arena handle, for queue setup.
func (p *Pool) Handle() api.PoolHandle { return p.handle }

// Alloc draws one packet from the free list. Returns nil when the pool is
// exhausted; the caller decides whether to retry.
func (p *Pool) Alloc() *Packet {
	h, ok := p.capa.Alloc(p.handle)
	if !ok {
		return nil
	}
	return Wrap(p.capa, h)
}

// AllocBulk fills batch up to its capacity with fresh packets. The native
// layer is all-or-nothing for bulk draws: either the batch is filled and
// true is returned, or the batch is untouched and false is returned.
func (p *Pool) AllocBulk(batch *PacketBatch) bool {
	n := batch.Cap() - batch.Len()
	if n == 0 {
		return true
	}
	handles, ok := p.capa.AllocBulk(p.handle, n)
	if !ok {
		return false
	}
	for _, h := range handles {
		batch.Append(Wrap(p.capa, h))
	}
	return true
}

// Close releases the arena. If buffers are still outstanding the release
// is registered with the Deferrer and retried there; Close itself never
// fails and is idempotent.
func (p *Pool) Close() {
	if p.closed {
		return
	}
	p.closed = true
	err := p.capa.FreePool(p.handle)
	if err == nil {
		return
	}
	if !errors.Is(err, api.ErrPoolBusy) {
		panic(fmt.Sprintf("pool: release of %q failed: %v", p.name, err))
	}
	capa, handle := p.capa, p.handle
	p.def.DeferRelease(p.name, func() bool {
		return capa.FreePool(handle) == nil
	})
}
