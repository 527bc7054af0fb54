package events

import (
	"math/big"

	"emberchain/core/types"
)

const (
	// TypeBurnRecorded is emitted for every burn folded into the global history.
	TypeBurnRecorded = "burn.recorded"
	// TypeRateLevelChanged signals that a user's dynamic rate level moved.
	TypeRateLevelChanged = "rate.levelChanged"
)

// BurnRecorded captures a single burn event and the refreshed rolling totals.
type BurnRecorded struct {
	Amount      *big.Int
	TotalBurned *big.Int
	Last24h     *big.Int
	Last7d      *big.Int
	Last30d     *big.Int
	AtUnix      int64
}

// EventType satisfies the Event interface.
func (BurnRecorded) EventType() string { return TypeBurnRecorded }

// Event converts the structured payload into a broadcastable event.
func (e BurnRecorded) Event() *types.Event {
	return &types.Event{
		Type: TypeBurnRecorded,
		Attributes: map[string]string{
			"amount":      formatAmount(e.Amount),
			"totalBurned": formatAmount(e.TotalBurned),
			"last24h":     formatAmount(e.Last24h),
			"last7d":      formatAmount(e.Last7d),
			"last30d":     formatAmount(e.Last30d),
			"at":          formatInt(e.AtUnix),
		},
	}
}

// RateLevelChanged captures a user's dynamic rate recomputation after a burn.
type RateLevelChanged struct {
	User             [20]byte
	Pool             string
	CumulativeBurned *big.Int
	RateBps          uint32
	NextThreshold    *big.Int
}

// EventType satisfies the Event interface.
func (RateLevelChanged) EventType() string { return TypeRateLevelChanged }

// Event converts the structured payload into a broadcastable event.
func (e RateLevelChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeRateLevelChanged,
		Attributes: map[string]string{
			"user":             formatAddress(e.User),
			"pool":             e.Pool,
			"cumulativeBurned": formatAmount(e.CumulativeBurned),
			"rateBps":          formatUint(uint64(e.RateBps)),
			"nextThreshold":    formatAmount(e.NextThreshold),
		},
	}
}
