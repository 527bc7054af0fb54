package rates

import (
	"math/big"

	"emberchain/native/numeric"
)

// UserState tracks one user's burn-driven rate for a single pool kind. States
// are created lazily on the user's first burn and are never deleted; the
// burn-triggered recompute is the only mutation path.
type UserState struct {
	CumulativeBurned *big.Int `json:"cumulativeBurned"`
	CurrentAPYBps    uint32   `json:"currentAPYBps"`
	NextThreshold    *big.Int `json:"nextThreshold"`
	LastUpdate       int64    `json:"lastUpdate"`
}

// NewUserState seeds a fresh state at the configured minimum rate.
func NewUserState(cfg Config) *UserState {
	return &UserState{
		CumulativeBurned: big.NewInt(0),
		CurrentAPYBps:    cfg.MinAPYBps,
		NextThreshold:    nextCumulativeThreshold(big.NewInt(0), cfg),
	}
}

// Clone produces a deep copy of the state.
func (s *UserState) Clone() *UserState {
	if s == nil {
		return nil
	}
	return &UserState{
		CumulativeBurned: numeric.Clamp(s.CumulativeBurned),
		CurrentAPYBps:    s.CurrentAPYBps,
		NextThreshold:    numeric.Clamp(s.NextThreshold),
		LastUpdate:       s.LastUpdate,
	}
}

// ApplyUserBurn folds a burn into the user's cumulative total and recomputes
// the rate. A nil state is created on the spot. The granted rate never moves
// backwards: burn totals are monotonically cumulative, so a recompute can only
// hold or raise the rate.
func ApplyUserBurn(state *UserState, amount *big.Int, cfg Config, now int64) *UserState {
	if state == nil {
		state = NewUserState(cfg)
	}
	state.CumulativeBurned = numeric.SatAdd(state.CumulativeBurned, amount)
	rate := CurrentRate(state.CumulativeBurned, cfg)
	if rate > state.CurrentAPYBps {
		state.CurrentAPYBps = rate
	}
	state.NextThreshold = nextCumulativeThreshold(state.CumulativeBurned, cfg)
	state.LastUpdate = now
	return state
}

// nextCumulativeThreshold returns the cumulative burn at which the next level
// is crossed, or the amount-domain maximum once the rate is saturated.
func nextCumulativeThreshold(cumulative *big.Int, cfg Config) *big.Int {
	threshold := cfg.threshold()
	if threshold.Sign() <= 0 {
		return new(big.Int).Set(numeric.MaxAmount)
	}
	if CurrentRate(cumulative, cfg) >= cfg.MaxAPYBps {
		return new(big.Int).Set(numeric.MaxAmount)
	}
	levels := new(big.Int).Quo(numeric.Clamp(cumulative), threshold)
	next := levels.Add(levels, big.NewInt(1))
	return numeric.Clamp(next.Mul(next, threshold))
}
