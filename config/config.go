package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddress string  `toml:"ListenAddress"`
	DataDir       string  `toml:"DataDir"`
	LogLevel      string  `toml:"LogLevel"`
	LogPath       string  `toml:"LogPath,omitempty"`
	Gateway       Gateway `toml:"Gateway"`
	Global        Global  `toml:"Global"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	for _, undecoded := range meta.Undecoded() {
		if len(undecoded) == 1 && undecoded[0] == "Pools" {
			return nil, fmt.Errorf("config file %s uses deprecated top-level Pools table; move it under [Global.Pools]", path)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8660"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./ember-data"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Gateway.RequestsPerSecond <= 0 {
		cfg.Gateway.RequestsPerSecond = 25
	}
	if cfg.Gateway.Burst <= 0 {
		cfg.Gateway.Burst = 50
	}
	if cfg.Gateway.ReadTimeoutSecs == 0 {
		cfg.Gateway.ReadTimeoutSecs = 10
	}
	if cfg.Gateway.WriteTimeoutSecs == 0 {
		cfg.Gateway.WriteTimeoutSecs = 15
	}
	if emptyGlobal(cfg.Global) {
		cfg.Global = DefaultGlobal()
	}
}

func emptyGlobal(g Global) bool {
	return g.Rates.MinAPYBps == 0 && g.Rates.MaxAPYBps == 0 &&
		g.Pools.FastBurn.BaseAPYBps == 0 && g.Pools.MidTerm.BaseAPYBps == 0 &&
		g.Pools.LongTerm.BaseAPYBps == 0
}

// DefaultGlobal returns the launch policy values.
func DefaultGlobal() Global {
	return Global{
		Pools: Pools{
			FastBurn: Pool{Active: true, BaseAPYBps: 1_000, MinPeriodDays: 30, EarlyWithdrawalPenaltyBps: 8_000, CancellationPenaltyBps: 2_500, PaymentFrequencyDays: 1},
			MidTerm:  Pool{Active: true, BaseAPYBps: 1_500, MinPeriodDays: 90, EarlyWithdrawalPenaltyBps: 5_000, CancellationPenaltyBps: 1_000, PaymentFrequencyDays: 7},
			LongTerm: Pool{Active: true, BaseAPYBps: 2_200, MinPeriodDays: 180, EarlyWithdrawalPenaltyBps: 3_000, CancellationPenaltyBps: 500, PaymentFrequencyDays: 30},
		},
		Rates: Rates{
			MinAPYBps:               1_000,
			MaxAPYBps:               3_000,
			BurnThresholdPerLevel:   "100000000000000",
			APYIncrementPerLevelBps: 250,
		},
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: ":8660",
		DataDir:       "./ember-data",
		LogLevel:      "info",
		Gateway: Gateway{
			RequestsPerSecond: 25,
			Burst:             50,
			ReadTimeoutSecs:   10,
			WriteTimeoutSecs:  15,
		},
		Global: DefaultGlobal(),
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
