// File: nic/queue_test.go
// Author: momentics <momentics@gmail.com>

package nic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/fake"
	"github.com/momentics/hioload-nic/nic"
	"github.com/momentics/hioload-nic/pool"
)

// singlePortConfig: two cores on one socket, one loopback port.
func singlePortConfig(spec fake.PortSpec) fake.Config {
	return fake.Config{
		CoreSockets:      []api.SocketID{0, 0},
		Ports:            []fake.PortSpec{spec},
		CleanupSupported: true,
	}
}

func setupSinglePort(t *testing.T, spec fake.PortSpec) (*fake.Capability, *nic.Runtime, map[api.CoreID]*nic.CoreQueues) {
	t.Helper()
	capa, rt := openRuntime(t, singlePortConfig(spec))
	queues, err := rt.Setup(api.PolicyFull, api.PolicyFull)
	require.NoError(t, err)
	return capa, rt, queues
}

func txPool(t *testing.T, rt *nic.Runtime, name string) *pool.Pool {
	t.Helper()
	p, err := pool.NewPool(rt.Capability(), rt, name, api.DefaultPoolConfig(), api.SocketID(0))
	require.NoError(t, err)
	return p
}

func fillBatch(t *testing.T, p *pool.Pool, n, payload int) *pool.PacketBatch {
	t.Helper()
	batch := pool.NewPacketBatch(n)
	require.True(t, p.AllocBulk(batch))
	for i := 0; i < batch.Len(); i++ {
		buf := batch.Get(i).Append(payload)
		for j := range buf {
			buf[j] = byte(i)
		}
	}
	return batch
}

func TestTransmitAlwaysDrainsBatch(t *testing.T) {
	// The port accepts only 5 packets per burst; the rest must be freed
	// and the batch still ends empty.
	_, rt, queues := setupSinglePort(t, fake.PortSpec{
		Socket: 0, StatsResetSupported: true, TxAcceptLimit: 5,
	})
	txq := firstTx(queues)
	p := txPool(t, rt, "tx-drain")
	defer p.Close()

	batch := fillBatch(t, p, 32, 64)
	sent := txq.Transmit(batch)
	assert.Equal(t, 5, sent)
	assert.Equal(t, 0, batch.Len(), "batch must end at length zero")
}

func TestTransmitDoesNotLeakUnsentPackets(t *testing.T) {
	capa, rt, queues := setupSinglePort(t, fake.PortSpec{
		Socket: 0, StatsResetSupported: true, TxAcceptLimit: 3,
	})
	txq := firstTx(queues)
	p := txPool(t, rt, "tx-noleak")

	batch := fillBatch(t, p, 16, 64)
	txq.Transmit(batch)

	// Unsent packets back in the pool, sent ones copied out of it; the
	// tx pool itself no longer holds any borrows.
	drainAll(queues)
	assert.Equal(t, 0, capa.Outstanding())
	p.Close()
}

func TestTransmitClonedKeepsCallerOwnership(t *testing.T) {
	capa, rt, queues := setupSinglePort(t, fake.PortSpec{
		Socket: 0, StatsResetSupported: true, TxAcceptLimit: 4,
	})
	txq := firstTx(queues)
	p := txPool(t, rt, "tx-cloned")

	batch := fillBatch(t, p, 8, 64)
	sent := txq.TransmitCloned(batch)
	assert.Equal(t, 4, sent)
	assert.Equal(t, 8, batch.Len(), "caller retains its batch")

	// The caller's references are intact; freeing them plus draining the
	// loopback deliveries leaves nothing outstanding.
	batch.FreeAll()
	drainAll(queues)
	assert.Equal(t, 0, capa.Outstanding())
	p.Close()
}

func TestReceiveAppendsAtCurrentLength(t *testing.T) {
	_, rt, queues := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: true})
	txq := firstTx(queues)
	rxq := firstRx(queues)
	p := txPool(t, rt, "rx-append")
	defer p.Close()

	txq.Transmit(fillBatch(t, p, 4, 100))

	// Pre-seed the batch with one packet of our own; Receive must append
	// after it, bounded by remaining capacity.
	batch := pool.NewPacketBatch(3)
	own := p.Alloc()
	require.NotNil(t, own)
	batch.Append(own)

	n := receiveUntil(rxq, batch, 2, time.Second)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, batch.Len())
	assert.Same(t, own, batch.Get(0))
	batch.FreeAll()
	drainAll(queues)
}

func TestReceiveZeroIsBackpressureNotError(t *testing.T) {
	_, _, queues := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: true})
	rxq := firstRx(queues)
	batch := pool.NewPacketBatch(8)
	assert.Equal(t, 0, rxq.Receive(batch))
	assert.Equal(t, 0, batch.Len())
}

func TestLoopbackDeliversAllPackets(t *testing.T) {
	// One TX core, one RX core, Full policy: 32 transmitted packets
	// eventually accumulate on the receive side.
	_, rt, queues := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: true})
	p := txPool(t, rt, "loopback")
	defer p.Close()

	batch := fillBatch(t, p, 32, 42)

	var group nic.LaunchGroup
	var received int
	group.Launch(0, func() {
		firstTx(queues).Transmit(batch)
	})
	group.Launch(1, func() {
		batch := pool.NewPacketBatch(32)
		deadline := time.Now().Add(5 * time.Second)
		for received < 32 && time.Now().Before(deadline) {
			n := rxAll(queues, batch)
			received += n
			if n == 0 {
				time.Sleep(time.Millisecond)
			}
			batch.FreeAll()
		}
	})
	group.Wait()
	assert.GreaterOrEqual(t, received, 32)
}

// helpers

func firstTx(queues map[api.CoreID]*nic.CoreQueues) *nic.TxQueue {
	for _, cq := range queues {
		if len(cq.Tx) > 0 {
			return cq.Tx[0]
		}
	}
	return nil
}

func firstRx(queues map[api.CoreID]*nic.CoreQueues) *nic.RxQueue {
	for _, cq := range queues {
		if len(cq.Rx) > 0 {
			return cq.Rx[0]
		}
	}
	return nil
}

// rxAll polls every RX queue once into batch.
func rxAll(queues map[api.CoreID]*nic.CoreQueues, batch *pool.PacketBatch) int {
	total := 0
	for _, cq := range queues {
		for _, q := range cq.Rx {
			total += q.Receive(batch)
		}
	}
	return total
}

// drainAll frees every packet still sitting in RX rings.
func drainAll(queues map[api.CoreID]*nic.CoreQueues) {
	batch := pool.NewPacketBatch(64)
	for {
		if rxAll(queues, batch) == 0 {
			batch.FreeAll()
			return
		}
		batch.FreeAll()
	}
}

// receiveUntil polls one queue until want packets arrived or the timeout
// elapsed, returning the number received.
func receiveUntil(q *nic.RxQueue, batch *pool.PacketBatch, want int, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	got := 0
	for got < want && time.Now().Before(deadline) {
		n := q.Receive(batch)
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		got += n
	}
	return got
}
