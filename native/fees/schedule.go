package fees

import (
	"math/big"

	"emberchain/native/numeric"
)

// Category enumerates the fee flows the protocol routes through the fixed
// distribution schedule. Governance payment categories are consumed through
// the same split call as the core flows.
type Category string

const (
	CategoryTransaction        Category = "transaction"
	CategoryStakingEntry       Category = "stakingEntry"
	CategoryInterestWithdrawal Category = "interestWithdrawal"
	CategoryEarlyWithdrawal    Category = "earlyWithdrawal"
	CategoryCancellation       Category = "cancellation"
	CategoryProposalPayment    Category = "proposalPayment"
	CategoryVotePayment        Category = "votePayment"
)

// Valid reports whether the category is part of the closed enumeration.
func (c Category) Valid() bool {
	_, ok := schedule[c]
	return ok
}

// Distribution carries the absolute shares routed to each destination. The
// shares always reconstruct the split input exactly.
type Distribution struct {
	Burn    *big.Int
	Staking *big.Int
	Rewards *big.Int
	Team    *big.Int
}

// Sum returns the total of all four shares.
func (d Distribution) Sum() *big.Int {
	sum := new(big.Int)
	for _, share := range []*big.Int{d.Burn, d.Staking, d.Rewards, d.Team} {
		if share != nil {
			sum.Add(sum, share)
		}
	}
	return sum
}

// shares holds a per-category percentage row. Percentages sum to 100 within
// each row; the bucket named by remainder is derived by subtraction from the
// split total so integer truncation never loses or double-counts units.
type shares struct {
	burn, staking, rewards, team uint32
	remainder                    bucket
}

type bucket int

const (
	bucketBurn bucket = iota
	bucketStaking
	bucketRewards
	bucketTeam
)

var schedule = map[Category]shares{
	CategoryTransaction:        {burn: 30, staking: 50, rewards: 20, remainder: bucketRewards},
	CategoryStakingEntry:       {staking: 40, rewards: 50, team: 10, remainder: bucketTeam},
	CategoryInterestWithdrawal: {burn: 20, staking: 50, rewards: 30, remainder: bucketRewards},
	CategoryEarlyWithdrawal:    {burn: 20, staking: 50, rewards: 30, remainder: bucketRewards},
	CategoryCancellation:       {staking: 50, rewards: 40, team: 10, remainder: bucketTeam},
	CategoryProposalPayment:    {burn: 30, staking: 50, rewards: 20, remainder: bucketRewards},
	CategoryVotePayment:        {burn: 30, staking: 50, rewards: 20, remainder: bucketRewards},
}

var oneHundred = big.NewInt(100)

// Split divides the collected total between the burn sink, staking reserve,
// rewards pool and team treasury according to the category's fixed row. A zero
// or negative total short-circuits to an all-zero distribution; unknown
// categories resolve the same way so the caller never routes unclassified
// value.
func Split(total *big.Int, category Category) Distribution {
	dist := Distribution{
		Burn:    big.NewInt(0),
		Staking: big.NewInt(0),
		Rewards: big.NewInt(0),
		Team:    big.NewInt(0),
	}
	row, ok := schedule[category]
	if !ok || total == nil || total.Sign() <= 0 {
		return dist
	}
	amount := numeric.Clamp(total)
	percentOf := func(pct uint32) *big.Int {
		if pct == 0 {
			return big.NewInt(0)
		}
		share := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(pct)))
		return share.Quo(share, oneHundred)
	}
	if row.remainder != bucketBurn {
		dist.Burn = percentOf(row.burn)
	}
	if row.remainder != bucketStaking {
		dist.Staking = percentOf(row.staking)
	}
	if row.remainder != bucketRewards {
		dist.Rewards = percentOf(row.rewards)
	}
	if row.remainder != bucketTeam {
		dist.Team = percentOf(row.team)
	}
	rest := new(big.Int).Set(amount)
	rest.Sub(rest, dist.Burn)
	rest.Sub(rest, dist.Staking)
	rest.Sub(rest, dist.Rewards)
	rest.Sub(rest, dist.Team)
	switch row.remainder {
	case bucketBurn:
		dist.Burn = rest
	case bucketStaking:
		dist.Staking = rest
	case bucketRewards:
		dist.Rewards = rest
	case bucketTeam:
		dist.Team = rest
	}
	return dist
}
