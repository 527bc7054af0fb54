package events

import (
	"math/big"

	"emberchain/core/types"
)

const (
	// TypeStakingOpened is emitted when a new staking position is created.
	TypeStakingOpened = "staking.opened"
	// TypeStakingAccrued captures interest posted onto an active position.
	TypeStakingAccrued = "staking.accrued"
	// TypeStakingWithdrawn is emitted when a position is closed via withdrawal.
	TypeStakingWithdrawn = "staking.withdrawn"
	// TypeStakingCancelled is emitted when a position is cancelled and its
	// pending rewards are forfeited.
	TypeStakingCancelled = "staking.cancelled"
)

// StakingOpened captures the audit trail for a freshly opened position.
type StakingOpened struct {
	ID           uint64
	Owner        [20]byte
	Pool         string
	Principal    *big.Int
	EntryFeeBps  uint32
	EntryFee     *big.Int
	OpenedAtUnix int64
}

// EventType satisfies the Event interface.
func (StakingOpened) EventType() string { return TypeStakingOpened }

// Event converts the structured payload into a broadcastable event.
func (e StakingOpened) Event() *types.Event {
	return &types.Event{
		Type: TypeStakingOpened,
		Attributes: map[string]string{
			"id":          formatUint(e.ID),
			"ref":         formatRef(PositionRef(e.Owner, e.ID)),
			"owner":       formatAddress(e.Owner),
			"pool":        e.Pool,
			"principal":   formatAmount(e.Principal),
			"entryFeeBps": formatUint(uint64(e.EntryFeeBps)),
			"entryFee":    formatAmount(e.EntryFee),
			"openedAt":    formatInt(e.OpenedAtUnix),
		},
	}
}

// StakingAccrued captures a reward delta posted on a cadence boundary.
type StakingAccrued struct {
	ID           uint64
	Owner        [20]byte
	Pool         string
	RateBps      uint32
	CreditedDays uint64
	RewardsDelta *big.Int
	AccruedTotal *big.Int
}

// EventType satisfies the Event interface.
func (StakingAccrued) EventType() string { return TypeStakingAccrued }

// Event converts the structured payload into a broadcastable event.
func (e StakingAccrued) Event() *types.Event {
	return &types.Event{
		Type: TypeStakingAccrued,
		Attributes: map[string]string{
			"id":           formatUint(e.ID),
			"ref":          formatRef(PositionRef(e.Owner, e.ID)),
			"pool":         e.Pool,
			"rateBps":      formatUint(uint64(e.RateBps)),
			"creditedDays": formatUint(e.CreditedDays),
			"rewardsDelta": formatAmount(e.RewardsDelta),
			"accruedTotal": formatAmount(e.AccruedTotal),
		},
	}
}

// StakingWithdrawn captures the settlement of a completed position.
type StakingWithdrawn struct {
	ID          uint64
	Owner       [20]byte
	Pool        string
	Early       bool
	Penalty     *big.Int
	InterestFee *big.Int
	NetAmount   *big.Int
}

// EventType satisfies the Event interface.
func (StakingWithdrawn) EventType() string { return TypeStakingWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e StakingWithdrawn) Event() *types.Event {
	early := "false"
	if e.Early {
		early = "true"
	}
	return &types.Event{
		Type: TypeStakingWithdrawn,
		Attributes: map[string]string{
			"id":          formatUint(e.ID),
			"ref":         formatRef(PositionRef(e.Owner, e.ID)),
			"pool":        e.Pool,
			"early":       early,
			"penalty":     formatAmount(e.Penalty),
			"interestFee": formatAmount(e.InterestFee),
			"netAmount":   formatAmount(e.NetAmount),
		},
	}
}

// StakingCancelled captures the settlement of a cancelled position.
type StakingCancelled struct {
	ID        uint64
	Owner     [20]byte
	Pool      string
	Penalty   *big.Int
	Refund    *big.Int
	Forfeited *big.Int
}

// EventType satisfies the Event interface.
func (StakingCancelled) EventType() string { return TypeStakingCancelled }

// Event converts the structured payload into a broadcastable event.
func (e StakingCancelled) Event() *types.Event {
	return &types.Event{
		Type: TypeStakingCancelled,
		Attributes: map[string]string{
			"id":        formatUint(e.ID),
			"ref":       formatRef(PositionRef(e.Owner, e.ID)),
			"pool":      e.Pool,
			"penalty":   formatAmount(e.Penalty),
			"refund":    formatAmount(e.Refund),
			"forfeited": formatAmount(e.Forfeited),
		},
	}
}
