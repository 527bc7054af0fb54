package rates

import (
	"math/big"
	"testing"

	"emberchain/native/numeric"
)

func testConfig() Config {
	return Config{
		MinAPYBps:               1_000,
		MaxAPYBps:               3_000,
		BurnThresholdPerLevel:   big.NewInt(100_000),
		APYIncrementPerLevelBps: 250,
	}
}

func TestCurrentRateThresholdCount(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		burn int64
		want uint32
	}{
		{0, 1_000},
		{99_999, 1_000},
		{100_000, 1_250},
		{250_000, 1_500},
		{799_999, 2_750},
		{800_000, 3_000},
		{5_000_000, 3_000},
	}
	for _, tc := range cases {
		if got := CurrentRate(big.NewInt(tc.burn), cfg); got != tc.want {
			t.Fatalf("burn %d: expected %d bps, got %d", tc.burn, tc.want, got)
		}
	}
}

func TestCurrentRateMonotonic(t *testing.T) {
	cfg := testConfig()
	previous := uint32(0)
	for burn := int64(0); burn <= 1_200_000; burn += 50_000 {
		rate := CurrentRate(big.NewInt(burn), cfg)
		if rate < previous {
			t.Fatalf("rate decreased at burn %d: %d -> %d", burn, previous, rate)
		}
		if rate > cfg.MaxAPYBps {
			t.Fatalf("rate exceeded max at burn %d: %d", burn, rate)
		}
		previous = rate
	}
}

func TestCurrentRateExtremeBurnStaysBounded(t *testing.T) {
	cfg := testConfig()
	if got := CurrentRate(numeric.MaxAmount, cfg); got != cfg.MaxAPYBps {
		t.Fatalf("expected max rate at domain maximum, got %d", got)
	}
}

func TestRateFromTimeWeightedLevels(t *testing.T) {
	cfg := testConfig()
	threshold := int64(100_000)
	step := threshold / 10

	below := RateFromTimeWeighted(big.NewInt(threshold-1), cfg)
	if below.Level != 0 || below.RateBps != cfg.MinAPYBps {
		t.Fatalf("below threshold: level=%d rate=%d", below.Level, below.RateBps)
	}
	if below.NextThreshold.Cmp(big.NewInt(threshold+step)) != 0 {
		t.Fatalf("unexpected next threshold below first level: %s", below.NextThreshold)
	}

	at := RateFromTimeWeighted(big.NewInt(threshold), cfg)
	if at.Level != 0 {
		t.Fatalf("at threshold: expected level 0, got %d", at.Level)
	}

	three := RateFromTimeWeighted(big.NewInt(threshold+3*step), cfg)
	if three.Level != 3 || three.RateBps != 1_750 {
		t.Fatalf("three sub-bands past: level=%d rate=%d", three.Level, three.RateBps)
	}
	if three.NextThreshold.Cmp(big.NewInt(threshold+4*step)) != 0 {
		t.Fatalf("unexpected next threshold at level 3: %s", three.NextThreshold)
	}

	capped := RateFromTimeWeighted(big.NewInt(threshold*50), cfg)
	if capped.Level != MaxLevel {
		t.Fatalf("expected hard cap at level %d, got %d", MaxLevel, capped.Level)
	}
	if capped.RateBps != cfg.MaxAPYBps {
		t.Fatalf("expected max rate at level cap, got %d", capped.RateBps)
	}
	if capped.NextThreshold.Cmp(numeric.MaxAmount) != 0 {
		t.Fatalf("expected sentinel next threshold at level cap, got %s", capped.NextThreshold)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := testConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	zeroThreshold := testConfig()
	zeroThreshold.BurnThresholdPerLevel = big.NewInt(0)
	if err := zeroThreshold.Validate(); err == nil {
		t.Fatalf("zero threshold must be rejected at config-write time")
	}

	nilThreshold := testConfig()
	nilThreshold.BurnThresholdPerLevel = nil
	if err := nilThreshold.Validate(); err == nil {
		t.Fatalf("nil threshold must be rejected")
	}

	inverted := testConfig()
	inverted.MinAPYBps = 5_000
	if err := inverted.Validate(); err == nil {
		t.Fatalf("min above max must be rejected")
	}
}

func TestApplyUserBurn(t *testing.T) {
	cfg := testConfig()
	state := ApplyUserBurn(nil, big.NewInt(50_000), cfg, 100)
	if state == nil {
		t.Fatalf("expected lazily created state")
	}
	if state.CurrentAPYBps != cfg.MinAPYBps {
		t.Fatalf("first burn below threshold should stay at min: %d", state.CurrentAPYBps)
	}
	if state.NextThreshold.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("unexpected next threshold: %s", state.NextThreshold)
	}

	state = ApplyUserBurn(state, big.NewInt(60_000), cfg, 200)
	if state.CumulativeBurned.Cmp(big.NewInt(110_000)) != 0 {
		t.Fatalf("unexpected cumulative: %s", state.CumulativeBurned)
	}
	if state.CurrentAPYBps != 1_250 {
		t.Fatalf("expected one level crossed: %d", state.CurrentAPYBps)
	}
	if state.NextThreshold.Cmp(big.NewInt(200_000)) != 0 {
		t.Fatalf("unexpected next threshold after level 1: %s", state.NextThreshold)
	}
	if state.LastUpdate != 200 {
		t.Fatalf("unexpected last update: %d", state.LastUpdate)
	}
}

func TestApplyUserBurnNeverLowersRate(t *testing.T) {
	cfg := testConfig()
	state := ApplyUserBurn(nil, big.NewInt(900_000), cfg, 1)
	if state.CurrentAPYBps != cfg.MaxAPYBps {
		t.Fatalf("expected saturated rate, got %d", state.CurrentAPYBps)
	}
	if state.NextThreshold.Cmp(numeric.MaxAmount) != 0 {
		t.Fatalf("expected sentinel threshold at saturation, got %s", state.NextThreshold)
	}
	// A tighter config later must not claw the granted rate back.
	tighter := cfg
	tighter.MaxAPYBps = 1_500
	state = ApplyUserBurn(state, big.NewInt(1), tighter, 2)
	if state.CurrentAPYBps != cfg.MaxAPYBps {
		t.Fatalf("granted rate regressed: %d", state.CurrentAPYBps)
	}
}
