package config

import (
	"fmt"
	"math/big"
	"strings"

	"emberchain/native/rates"
	"emberchain/native/staking"
)

// PoolConfigs converts the configured pool tables into the engine's parameter
// map. Call ValidateConfig first; this conversion does not re-check bounds.
func (g Global) PoolConfigs() map[staking.PoolKind]staking.PoolConfig {
	return map[staking.PoolKind]staking.PoolConfig{
		staking.PoolFastBurn: poolConfig(g.Pools.FastBurn),
		staking.PoolMidTerm:  poolConfig(g.Pools.MidTerm),
		staking.PoolLongTerm: poolConfig(g.Pools.LongTerm),
	}
}

func poolConfig(p Pool) staking.PoolConfig {
	return staking.PoolConfig{
		Active:                    p.Active,
		BaseAPYBps:                p.BaseAPYBps,
		MinPeriodDays:             p.MinPeriodDays,
		EarlyWithdrawalPenaltyBps: p.EarlyWithdrawalPenaltyBps,
		CancellationPenaltyBps:    p.CancellationPenaltyBps,
		PaymentFrequencyDays:      p.PaymentFrequencyDays,
	}
}

// RatesConfig parses the configured rate policy into runtime values.
func (g Global) RatesConfig() (rates.Config, error) {
	threshold, err := parseUintAmount(g.Rates.BurnThresholdPerLevel)
	if err != nil {
		return rates.Config{}, fmt.Errorf("invalid Global.Rates.BurnThresholdPerLevel: %w", err)
	}
	return rates.Config{
		MinAPYBps:               g.Rates.MinAPYBps,
		MaxAPYBps:               g.Rates.MaxAPYBps,
		BurnThresholdPerLevel:   threshold,
		APYIncrementPerLevelBps: g.Rates.APYIncrementPerLevelBps,
	}, nil
}

func parseUintAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount must not be empty")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not a base-10 integer", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must not be negative", raw)
	}
	return value, nil
}
