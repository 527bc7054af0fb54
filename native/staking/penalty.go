package staking

import (
	"math/big"

	"emberchain/native/fees"
	"emberchain/native/numeric"
)

// FastBurn early exits charge a flat quote-unit fee on top of the
// principal- and interest-based components. 5.000000 quote units.
const fastBurnEarlyFlatFeeQuote = 5_000_000

const (
	fastBurnEarlyPrincipalBps = 5_000
	fastBurnEarlyInterestBps  = 8_000
	fastBurnCancellationBps   = 2_500
)

// earlyPenaltyRule computes the early-withdrawal penalty for one pool kind.
// The penalty is an amount in asset base units; the engine deducts it from
// accrued rewards only, saturating at zero, never from principal.
type earlyPenaltyRule func(cfg PoolConfig, principal, accrued *big.Int) *big.Int

// cancellationRule computes the cancellation penalty as a slice of principal.
type cancellationRule func(cfg PoolConfig, principal *big.Int) *big.Int

// The per-product rules live in tables rather than inline branches so adding
// a fourth pool is a single new entry.
var earlyPenaltyRules = map[PoolKind]earlyPenaltyRule{
	PoolFastBurn: fastBurnEarlyPenalty,
	PoolMidTerm:  rewardShareEarlyPenalty,
	PoolLongTerm: rewardShareEarlyPenalty,
}

var cancellationRules = map[PoolKind]cancellationRule{
	PoolFastBurn: fastBurnCancellationPenalty,
	PoolMidTerm:  configuredCancellationPenalty,
	PoolLongTerm: configuredCancellationPenalty,
}

// fastBurnEarlyPenalty sums three components: the flat quote fee, a fixed
// fraction of principal, and a fraction of the accrued interest.
func fastBurnEarlyPenalty(_ PoolConfig, principal, accrued *big.Int) *big.Int {
	penalty := fees.QuoteToAsset(big.NewInt(fastBurnEarlyFlatFeeQuote))
	penalty = numeric.SatAdd(penalty, bpsOf(principal, fastBurnEarlyPrincipalBps))
	return numeric.SatAdd(penalty, bpsOf(accrued, fastBurnEarlyInterestBps))
}

// rewardShareEarlyPenalty charges the configured percentage of total accrued
// rewards and leaves principal untouched.
func rewardShareEarlyPenalty(cfg PoolConfig, _, accrued *big.Int) *big.Int {
	return bpsOf(accrued, uint64(cfg.EarlyWithdrawalPenaltyBps))
}

func fastBurnCancellationPenalty(_ PoolConfig, principal *big.Int) *big.Int {
	return bpsOf(principal, fastBurnCancellationBps)
}

func configuredCancellationPenalty(cfg PoolConfig, principal *big.Int) *big.Int {
	return bpsOf(principal, uint64(cfg.CancellationPenaltyBps))
}

func bpsOf(v *big.Int, bps uint64) *big.Int {
	product := numeric.SatMul(v, new(big.Int).SetUint64(bps))
	return numeric.Div(product, big.NewInt(BpsDenominator))
}
