// File: control/config_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/control"
)

func TestDefaultConfigMatchesStockSizing(t *testing.T) {
	cfg := control.DefaultConfig()
	assert.Equal(t, api.DefaultRxPoolSize, cfg.PoolSize)
	assert.Equal(t, api.DefaultDataRoomSize, cfg.DataRoomSize)
	assert.Equal(t, api.DefaultRxDescriptors, cfg.RxDescriptors)
	assert.Equal(t, api.DefaultBurstSize, cfg.BurstSize)
	assert.True(t, cfg.Promiscuous)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HIOLOAD_NIC_POOL_SIZE", "1024")
	t.Setenv("HIOLOAD_NIC_BURST_SIZE", "64")
	t.Setenv("HIOLOAD_NIC_PROMISCUOUS", "false")

	cfg, err := control.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), cfg.PoolSize)
	assert.Equal(t, 64, cfg.BurstSize)
	assert.False(t, cfg.Promiscuous)
	// Untouched knobs keep their defaults.
	assert.Equal(t, api.DefaultDataRoomSize, cfg.DataRoomSize)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poolSize: 2048\nrxDescriptors: 512\n"), 0644))

	cfg := control.DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, uint32(2048), cfg.PoolSize)
	assert.Equal(t, uint16(512), cfg.RxDescriptors)
	assert.Equal(t, api.DefaultTxDescriptors, cfg.TxDescriptors)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := control.DefaultConfig()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestRuntimeOptionsCount(t *testing.T) {
	cfg := control.DefaultConfig()
	assert.Len(t, cfg.RuntimeOptions(), 3)
}
