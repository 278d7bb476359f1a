// File: control/config.go
// Author: momentics <momentics@gmail.com>
//
// Deployment configuration: pool sizing, descriptor rings and logging.
// Values come from the environment (HIOLOAD_NIC_* variables, optionally
// bootstrapped from a .env file) with an optional YAML overlay.

package control

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/logging"
	"github.com/momentics/hioload-nic/nic"
)

// Config collects the deployment-tunable knobs.
type Config struct {
	// PoolSize is the buffer count of each per-RX-queue pool.
	PoolSize uint32 `yaml:"poolSize" envconfig:"POOL_SIZE"`

	// PoolCacheSize is the per-core free-list cache size.
	PoolCacheSize uint32 `yaml:"poolCacheSize" envconfig:"POOL_CACHE_SIZE"`

	// DataRoomSize is the usable byte capacity of each buffer.
	DataRoomSize uint32 `yaml:"dataRoomSize" envconfig:"DATA_ROOM_SIZE"`

	// RxDescriptors / TxDescriptors size the hardware rings. Must satisfy
	// the driver's bounds and alignment; violations panic at Setup.
	RxDescriptors uint16 `yaml:"rxDescriptors" envconfig:"RX_DESCRIPTORS"`
	TxDescriptors uint16 `yaml:"txDescriptors" envconfig:"TX_DESCRIPTORS"`

	// BurstSize is the suggested batch capacity for receive/transmit.
	BurstSize int `yaml:"burstSize" envconfig:"BURST_SIZE"`

	// Promiscuous controls the per-port promiscuous default.
	Promiscuous bool `yaml:"promiscuous" envconfig:"PROMISCUOUS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" envconfig:"LOG_LEVEL"`

	// LogDir/LogFile enable rotated file logging when both are set.
	LogDir  string `yaml:"logDir" envconfig:"LOG_DIR"`
	LogFile string `yaml:"logFile" envconfig:"LOG_FILE"`
}

// DefaultConfig returns the stock sizing.
func DefaultConfig() Config {
	return Config{
		PoolSize:      api.DefaultRxPoolSize,
		PoolCacheSize: api.DefaultPerCoreCache,
		DataRoomSize:  api.DefaultDataRoomSize,
		RxDescriptors: api.DefaultRxDescriptors,
		TxDescriptors: api.DefaultTxDescriptors,
		BurstSize:     api.DefaultBurstSize,
		Promiscuous:   true,
		LogLevel:      "info",
	}
}

// FromEnv loads the configuration from HIOLOAD_NIC_* environment
// variables on top of the defaults. A .env file in the working directory
// is honored when present.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Debugf("control: no .env loaded: %v", err)
	}
	cfg := DefaultConfig()
	if err := envconfig.Process("hioload_nic", &cfg); err != nil {
		return cfg, fmt.Errorf("control: env config: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays cfg with values from a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("control: parse %s: %w", path, err)
	}
	return nil
}

// ApplyLogging configures the process logger from cfg.
func (c Config) ApplyLogging() error {
	logging.SetLevel(logging.ParseLevel(c.LogLevel))
	if c.LogDir != "" && c.LogFile != "" {
		return logging.EnableFileLogging(c.LogDir, c.LogFile, 100, 3, 28)
	}
	return nil
}

// RuntimeOptions translates cfg into nic.Open options.
func (c Config) RuntimeOptions() []nic.Option {
	return []nic.Option{
		nic.WithPoolConfig(api.PoolConfig{
			Count:        c.PoolSize,
			CacheSize:    c.PoolCacheSize,
			DataRoomSize: c.DataRoomSize,
		}),
		nic.WithDescriptors(c.RxDescriptors, c.TxDescriptors),
		nic.WithPromiscuous(c.Promiscuous),
	}
}
