// File: nic/port_test.go
// Author: momentics <momentics@gmail.com>

package nic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/fake"
	"github.com/momentics/hioload-nic/pool"
)

func TestSoftwareStatsDeltasAreZeroWithoutTraffic(t *testing.T) {
	_, rt, _ := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: false})
	port := rt.Ports()[0]

	a, err := port.GetStats()
	require.NoError(t, err)
	b, err := port.GetStats()
	require.NoError(t, err)
	assert.Equal(t, api.PortStats{}, a)
	assert.Equal(t, api.PortStats{}, b)
}

func TestSoftwareStatsResetMovesBaseline(t *testing.T) {
	_, rt, queues := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: false})
	port := rt.Ports()[0]
	p := txPool(t, rt, "stats-sw")
	defer p.Close()

	firstTx(queues).Transmit(fillBatch(t, p, 8, 60))

	stats, err := port.GetStats()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), stats.OutPackets)
	assert.Equal(t, uint64(8*60), stats.OutBytes)

	require.NoError(t, port.ResetStats())
	stats, err = port.GetStats()
	require.NoError(t, err)
	assert.Equal(t, api.PortStats{}, stats, "delta must be zero right after reset")
	drainAll(queues)
}

func TestHardwareStatsReset(t *testing.T) {
	capa, rt, queues := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: true})
	port := rt.Ports()[0]
	p := txPool(t, rt, "stats-hw")
	defer p.Close()

	firstTx(queues).Transmit(fillBatch(t, p, 4, 60))

	stats, err := port.GetStats()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), stats.OutPackets)

	require.NoError(t, port.ResetStats())
	raw, err := capa.StatsGet(port.ID())
	require.NoError(t, err)
	assert.Equal(t, api.PortStats{}, raw, "hardware counters must be zeroed in place")
	drainAll(queues)
}

func TestPortIdentity(t *testing.T) {
	_, rt, _ := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: true})
	port := rt.Ports()[0]
	assert.Equal(t, uint16(0), port.ID())
	assert.Equal(t, api.SocketID(0), port.Socket())
	assert.NotEqual(t, [6]byte{}, port.MACAddr())
}

func TestStatsCountReceivedTraffic(t *testing.T) {
	_, rt, queues := setupSinglePort(t, fake.PortSpec{Socket: 0, StatsResetSupported: true})
	port := rt.Ports()[0]
	p := txPool(t, rt, "stats-rx")
	defer p.Close()

	firstTx(queues).Transmit(fillBatch(t, p, 8, 100))

	batch := pool.NewPacketBatch(8)
	got := 0
	for got < 8 {
		n := rxAll(queues, batch)
		if n == 0 {
			break
		}
		got += n
		batch.FreeAll()
	}
	require.Equal(t, 8, got)

	stats, err := port.GetStats()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), stats.InPackets)
	assert.Equal(t, uint64(8*100), stats.InBytes)
}
