package events

import (
	"math/big"

	"emberchain/core/types"
)

// TypeFeeSplit is emitted when a collected fee is divided between the burn
// sink, staking reserve, rewards pool and team treasury.
const TypeFeeSplit = "fees.split"

// FeeSplit captures the routed shares for a single collected fee.
type FeeSplit struct {
	Category string
	Total    *big.Int
	Burn     *big.Int
	Staking  *big.Int
	Rewards  *big.Int
	Team     *big.Int
}

// EventType satisfies the Event interface.
func (FeeSplit) EventType() string { return TypeFeeSplit }

// Event converts the structured payload into a broadcastable event.
func (e FeeSplit) Event() *types.Event {
	return &types.Event{
		Type: TypeFeeSplit,
		Attributes: map[string]string{
			"category": e.Category,
			"total":    formatAmount(e.Total),
			"burn":     formatAmount(e.Burn),
			"staking":  formatAmount(e.Staking),
			"rewards":  formatAmount(e.Rewards),
			"team":     formatAmount(e.Team),
		},
	}
}
