package config

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emberchain/native/staking"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":8660" {
		t.Fatalf("unexpected listen address: %s", cfg.ListenAddress)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file was not persisted: %v", err)
	}
	if err := ValidateConfig(cfg.Global); err != nil {
		t.Fatalf("default policy must validate: %v", err)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	raw := `
ListenAddress = ":9000"
DataDir = "/var/lib/ember"
LogLevel = "debug"

[Gateway]
RequestsPerSecond = 10.0
Burst = 20

[Global.Pools.FastBurn]
Active = true
BaseAPYBps = 1200
MinPeriodDays = 30
EarlyWithdrawalPenaltyBps = 8000
CancellationPenaltyBps = 2500
PaymentFrequencyDays = 1

[Global.Pools.MidTerm]
Active = true
BaseAPYBps = 1500
MinPeriodDays = 90
EarlyWithdrawalPenaltyBps = 5000
CancellationPenaltyBps = 1000
PaymentFrequencyDays = 7

[Global.Pools.LongTerm]
Active = false
BaseAPYBps = 2200
MinPeriodDays = 180
EarlyWithdrawalPenaltyBps = 3000
CancellationPenaltyBps = 500
PaymentFrequencyDays = 30

[Global.Rates]
MinAPYBps = 1000
MaxAPYBps = 3000
BurnThresholdPerLevel = "250000000000"
APYIncrementPerLevelBps = 250
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":9000" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected service values: %s %s", cfg.ListenAddress, cfg.LogLevel)
	}
	if cfg.Global.Pools.FastBurn.BaseAPYBps != 1200 {
		t.Fatalf("unexpected FastBurn base APY: %d", cfg.Global.Pools.FastBurn.BaseAPYBps)
	}
	if cfg.Global.Pools.LongTerm.Active {
		t.Fatalf("LongTerm pool should be inactive")
	}
	// Unset gateway timeouts fall back to defaults.
	if cfg.Gateway.ReadTimeoutSecs != 10 || cfg.Gateway.WriteTimeoutSecs != 15 {
		t.Fatalf("unexpected gateway timeouts: %d/%d", cfg.Gateway.ReadTimeoutSecs, cfg.Gateway.WriteTimeoutSecs)
	}
}

func TestLoadRejectsDeprecatedPoolsTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	raw := `
ListenAddress = ":9000"

[Pools.FastBurn]
BaseAPYBps = 1200
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "deprecated") {
		t.Fatalf("expected deprecated table error, got %v", err)
	}
}

func TestValidateConfigRejectsBadPolicy(t *testing.T) {
	zeroFreq := DefaultGlobal()
	zeroFreq.Pools.MidTerm.PaymentFrequencyDays = 0
	if err := ValidateConfig(zeroFreq); err == nil {
		t.Fatalf("zero payment frequency must be rejected")
	}

	overPenalty := DefaultGlobal()
	overPenalty.Pools.FastBurn.EarlyWithdrawalPenaltyBps = 10_001
	if err := ValidateConfig(overPenalty); err == nil {
		t.Fatalf("penalty above 100%% must be rejected")
	}

	invertedRates := DefaultGlobal()
	invertedRates.Rates.MinAPYBps = 5_000
	if err := ValidateConfig(invertedRates); err == nil {
		t.Fatalf("min above max must be rejected")
	}

	badThreshold := DefaultGlobal()
	badThreshold.Rates.BurnThresholdPerLevel = "not-a-number"
	if err := ValidateConfig(badThreshold); err == nil {
		t.Fatalf("malformed burn threshold must be rejected")
	}
}

func TestRatesConfigParsesThreshold(t *testing.T) {
	g := DefaultGlobal()
	g.Rates.BurnThresholdPerLevel = "340282366920938463463374607431768211455"
	cfg, err := g.RatesConfig()
	if err != nil {
		t.Fatalf("rates config: %v", err)
	}
	expected, _ := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	if cfg.BurnThresholdPerLevel.Cmp(expected) != 0 {
		t.Fatalf("unexpected threshold: %s", cfg.BurnThresholdPerLevel)
	}
}

func TestPoolConfigsConversion(t *testing.T) {
	pools := DefaultGlobal().PoolConfigs()
	if len(pools) != 3 {
		t.Fatalf("expected three pools, got %d", len(pools))
	}
	fast, ok := pools[staking.PoolFastBurn]
	if !ok {
		t.Fatalf("missing fastBurn pool")
	}
	if fast.PaymentFrequencyDays != 1 || fast.BaseAPYBps != 1_000 {
		t.Fatalf("unexpected fastBurn parameters: %+v", fast)
	}
}
