// Package rates derives bounded interest rates from burn activity. Two
// equivalent scalings are supported: a threshold-count lookup over a user's
// cumulative burn, and a bucketed-level lookup over the time-weighted global
// burn. Both are pure projections with no clock and no state of their own.
package rates

import (
	"math/big"

	"emberchain/native/numeric"
)

// MaxLevel caps the bucketed-level variant regardless of how far the weighted
// burn exceeds the first threshold.
const MaxLevel = 10

// LevelRate is the outcome of the bucketed-level lookup.
type LevelRate struct {
	RateBps uint32
	Level   uint32
	// NextThreshold is the weighted-burn magnitude at which the level rises
	// next, or the amount-domain maximum once no further increase is possible.
	NextThreshold *big.Int
}

// CurrentRate resolves the threshold-count rate for a cumulative burn total:
// every full multiple of the configured threshold raises the APY by the
// configured increment, bounded by the maximum. The result is monotonically
// non-decreasing in the burn total.
func CurrentRate(cumulativeBurn *big.Int, cfg Config) uint32 {
	threshold := cfg.threshold()
	if threshold.Sign() <= 0 {
		return cfg.MinAPYBps
	}
	levels := numeric.Div(numeric.Clamp(cumulativeBurn), threshold)
	return rateForLevels(levels, cfg)
}

// RateFromTimeWeighted resolves the bucketed-level rate for a time-weighted
// burn magnitude. Below the first threshold the level is zero; past it, the
// distance beyond the threshold is split into ten equal sub-bands and the
// level is hard-capped at MaxLevel.
func RateFromTimeWeighted(weightedBurn *big.Int, cfg Config) LevelRate {
	threshold := cfg.threshold()
	weighted := numeric.Clamp(weightedBurn)
	if threshold.Sign() <= 0 {
		return LevelRate{RateBps: cfg.MinAPYBps, NextThreshold: new(big.Int).Set(numeric.MaxAmount)}
	}
	step := new(big.Int).Quo(threshold, big.NewInt(MaxLevel))
	level := uint32(0)
	if weighted.Cmp(threshold) >= 0 {
		if step.Sign() == 0 {
			// Thresholds below ten units cannot be sub-banded.
			level = MaxLevel
		} else {
			past := new(big.Int).Sub(weighted, threshold)
			bands := new(big.Int).Quo(past, step)
			if !bands.IsUint64() || bands.Uint64() >= MaxLevel {
				level = MaxLevel
			} else {
				level = uint32(bands.Uint64())
			}
		}
	}
	rate := rateForLevels(new(big.Int).SetUint64(uint64(level)), cfg)
	next := new(big.Int).Set(numeric.MaxAmount)
	if level < MaxLevel && step.Sign() > 0 {
		next = new(big.Int).SetUint64(uint64(level) + 1)
		next.Mul(next, step)
		next.Add(next, threshold)
	}
	return LevelRate{RateBps: rate, Level: level, NextThreshold: next}
}

// rateForLevels applies the increment for the crossed levels and bounds the
// outcome by the configured maximum.
func rateForLevels(levels *big.Int, cfg Config) uint32 {
	if cfg.MinAPYBps >= cfg.MaxAPYBps {
		return cfg.MaxAPYBps
	}
	if cfg.APYIncrementPerLevelBps == 0 || levels.Sign() <= 0 {
		return cfg.MinAPYBps
	}
	headroom := uint64(cfg.MaxAPYBps - cfg.MinAPYBps)
	levelCap := headroom / uint64(cfg.APYIncrementPerLevelBps)
	if !levels.IsUint64() || levels.Uint64() > levelCap {
		return cfg.MaxAPYBps
	}
	return cfg.MinAPYBps + uint32(levels.Uint64()*uint64(cfg.APYIncrementPerLevelBps))
}
