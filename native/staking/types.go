package staking

import (
	"fmt"
	"math/big"

	"emberchain/native/numeric"
)

// PoolKind enumerates the three staking products. The kind is fixed at open
// time and determines the payment cadence and penalty profile for the life of
// the position.
type PoolKind string

const (
	// PoolFastBurn posts interest daily and carries the harshest early-exit
	// penalty profile.
	PoolFastBurn PoolKind = "fastBurn"
	// PoolMidTerm posts interest weekly.
	PoolMidTerm PoolKind = "midTerm"
	// PoolLongTerm posts interest monthly.
	PoolLongTerm PoolKind = "longTerm"
)

// Valid reports whether the kind is part of the closed enumeration.
func (k PoolKind) Valid() bool {
	switch k {
	case PoolFastBurn, PoolMidTerm, PoolLongTerm:
		return true
	}
	return false
}

// Status tracks the position lifecycle. Active is the only mutable state;
// Cancelled and Completed are terminal and the position becomes a frozen
// audit record.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PoolConfig carries the staking parameters for one pool kind. It is set at
// initialisation and mutated only through the host's privileged update path.
type PoolConfig struct {
	Active                    bool
	BaseAPYBps                uint32
	MinPeriodDays             uint32
	EarlyWithdrawalPenaltyBps uint32
	CancellationPenaltyBps    uint32
	PaymentFrequencyDays      uint32
}

// Validate rejects parameter sets that would corrupt accrual or penalty math.
// This is the config-write counterpart of the engine's saturating runtime
// arithmetic: a zero payment frequency must never reach the accrual divisor.
func (c PoolConfig) Validate() error {
	if c.PaymentFrequencyDays == 0 {
		return fmt.Errorf("%w: paymentFrequencyDays must be positive", ErrInvalidConfiguration)
	}
	if c.EarlyWithdrawalPenaltyBps > BpsDenominator {
		return fmt.Errorf("%w: earlyWithdrawalPenaltyBps must not exceed %d", ErrInvalidConfiguration, BpsDenominator)
	}
	if c.CancellationPenaltyBps > BpsDenominator {
		return fmt.Errorf("%w: cancellationPenaltyBps must not exceed %d", ErrInvalidConfiguration, BpsDenominator)
	}
	if c.BaseAPYBps == 0 {
		return fmt.Errorf("%w: baseAPYBps must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// DefaultPoolConfigs returns the launch parameter set for the three products.
func DefaultPoolConfigs() map[PoolKind]PoolConfig {
	return map[PoolKind]PoolConfig{
		PoolFastBurn: {
			Active:                    true,
			BaseAPYBps:                1_000,
			MinPeriodDays:             30,
			EarlyWithdrawalPenaltyBps: 8_000,
			CancellationPenaltyBps:    2_500,
			PaymentFrequencyDays:      1,
		},
		PoolMidTerm: {
			Active:                    true,
			BaseAPYBps:                1_500,
			MinPeriodDays:             90,
			EarlyWithdrawalPenaltyBps: 5_000,
			CancellationPenaltyBps:    1_000,
			PaymentFrequencyDays:      7,
		},
		PoolLongTerm: {
			Active:                    true,
			BaseAPYBps:                2_200,
			MinPeriodDays:             180,
			EarlyWithdrawalPenaltyBps: 3_000,
			CancellationPenaltyBps:    500,
			PaymentFrequencyDays:      30,
		},
	}
}

// Position is the central mutable entity of the staking module. Rewards only
// accumulate while the position is Active; once the status turns terminal the
// record is immutable and retained for audit.
type Position struct {
	ID                 uint64   `json:"id"`
	Owner              [20]byte `json:"owner"`
	Pool               PoolKind `json:"pool"`
	Principal          *big.Int `json:"principal"`
	EntryFeePaid       *big.Int `json:"entryFeePaid"`
	OpenedAt           int64    `json:"openedAt"`
	LastAccrualAt      int64    `json:"lastAccrualAt"`
	AccumulatedRewards *big.Int `json:"accumulatedRewards"`
	Status             Status   `json:"status"`
}

// Clone produces a deep copy so snapshots never alias engine state.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Principal = numeric.Clamp(p.Principal)
	clone.EntryFeePaid = numeric.Clamp(p.EntryFeePaid)
	clone.AccumulatedRewards = numeric.Clamp(p.AccumulatedRewards)
	return &clone
}

// WithdrawalResult summarises the settlement of a completed position. The
// split fields carry routing amounts only; the surrounding integration layer
// performs the actual credits.
type WithdrawalResult struct {
	PositionID      uint64
	Early           bool
	DaysStaked      uint64
	RewardsAccrued  *big.Int
	Penalty         *big.Int
	PenaltySplit    SplitResult
	InterestFee     *big.Int
	InterestFeeHalf [2]*big.Int
	InterestSplit   SplitResult
	NetAmount       *big.Int
}

// CancellationResult summarises the settlement of a cancelled position. All
// rewards, credited or pending, are forfeited unconditionally.
type CancellationResult struct {
	PositionID   uint64
	Penalty      *big.Int
	PenaltySplit SplitResult
	Refund       *big.Int
	Forfeited    *big.Int
}

// SplitResult mirrors the fee schedule distribution in the staking result
// types so hosts can route without importing the fees package.
type SplitResult struct {
	Burn    *big.Int
	Staking *big.Int
	Rewards *big.Int
	Team    *big.Int
}
