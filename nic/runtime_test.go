// File: nic/runtime_test.go
// Author: momentics <momentics@gmail.com>

package nic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/fake"
	"github.com/momentics/hioload-nic/nic"
	"github.com/momentics/hioload-nic/pool"
)

func TestDeferredReleaseCompletesAtClose(t *testing.T) {
	capa := fake.New(fake.Config{CleanupSupported: true})
	rt, _, err := nic.Open(capa, nil)
	require.NoError(t, err)

	p, err := pool.NewPool(capa, rt, "gc-close", api.PoolConfig{Count: 4, DataRoomSize: 512}, api.SocketAny)
	require.NoError(t, err)

	pkt := p.Alloc()
	require.NotNil(t, pkt)
	p.Close()
	assert.Equal(t, 1, capa.PoolCount(), "release must be deferred while the packet lives")

	pkt.Free()
	require.NoError(t, rt.Close())
	assert.Equal(t, 0, capa.PoolCount(), "forced collection must release the pool")
	assert.Equal(t, 0, capa.Outstanding())
}

func TestDeferredReleaseRetriedOpportunistically(t *testing.T) {
	capa := fake.New(fake.Config{CleanupSupported: true})
	rt, _, err := nic.Open(capa, nil)
	require.NoError(t, err)
	defer rt.Close()

	p1, err := pool.NewPool(capa, rt, "gc-opp-1", api.PoolConfig{Count: 4, DataRoomSize: 512}, api.SocketAny)
	require.NoError(t, err)
	pkt := p1.Alloc()
	require.NotNil(t, pkt)
	p1.Close()
	require.Equal(t, 1, capa.PoolCount(), "gc-opp-1 still pending")

	pkt.Free()

	// A later deferred registration sweeps the pending queue.
	p2, err := pool.NewPool(capa, rt, "gc-opp-2", api.PoolConfig{Count: 4, DataRoomSize: 512}, api.SocketAny)
	require.NoError(t, err)
	pkt2 := p2.Alloc()
	require.NotNil(t, pkt2)
	p2.Close()

	assert.Equal(t, 1, capa.PoolCount(), "gc-opp-1 collected by the opportunistic sweep")
	pkt2.Free()
}

func TestCloseWhileBuffersAlivePanics(t *testing.T) {
	capa := fake.New(fake.Config{CleanupSupported: true})
	rt, _, err := nic.Open(capa, nil)
	require.NoError(t, err)

	p, err := pool.NewPool(capa, rt, "gc-leak", api.PoolConfig{Count: 4, DataRoomSize: 512}, api.SocketAny)
	require.NoError(t, err)
	pkt := p.Alloc()
	require.NotNil(t, pkt)
	p.Close()

	// The packet is never freed: forcing collection at teardown must
	// report the invariant violation.
	assert.Panics(t, func() { rt.Close() })
	pkt.Free()
}

func TestCloseIsIdempotent(t *testing.T) {
	capa := fake.New(fake.Config{CleanupSupported: true})
	rt, _, err := nic.Open(capa, nil)
	require.NoError(t, err)
	require.NoError(t, rt.Close())
	require.NoError(t, rt.Close())
	assert.Equal(t, 1, capa.Ops("Cleanup"))
}

func TestSocketsGroupsCoresByNode(t *testing.T) {
	_, rt := openRuntime(t, twoSocketConfig())
	groups := rt.Sockets()
	require.Len(t, groups, 2)
	assert.Equal(t, []api.CoreID{0, 1}, groups[0])
	assert.Equal(t, []api.CoreID{2, 3}, groups[1])
}
