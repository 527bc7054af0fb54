package rates

import (
	"errors"
	"fmt"
	"math/big"

	"emberchain/native/numeric"
)

// ErrInvalidConfiguration wraps every rejection produced by Validate. Config
// writes are the only place fallible checks live; the rate lookups themselves
// never fail.
var ErrInvalidConfiguration = errors.New("rate config: invalid configuration")

// Config shapes how a pool's interest rate scales with burned tokens. It is
// keyed per pool kind, separately from the pool's staking parameters, because
// rate scaling is optional and can be overridden without touching the pool.
type Config struct {
	MinAPYBps               uint32
	MaxAPYBps               uint32
	BurnThresholdPerLevel   *big.Int
	APYIncrementPerLevelBps uint32
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	clone := c
	if c.BurnThresholdPerLevel != nil {
		clone.BurnThresholdPerLevel = new(big.Int).Set(c.BurnThresholdPerLevel)
	}
	return clone
}

// Validate rejects configurations that would corrupt the rate lookups. A zero
// burn threshold in particular must never reach the hot path, where it would
// mean dividing by zero on every rate read.
func (c Config) Validate() error {
	if c.MinAPYBps == 0 {
		return fmt.Errorf("%w: minAPYBps must be positive", ErrInvalidConfiguration)
	}
	if c.MaxAPYBps == 0 {
		return fmt.Errorf("%w: maxAPYBps must be positive", ErrInvalidConfiguration)
	}
	if c.MinAPYBps > c.MaxAPYBps {
		return fmt.Errorf("%w: minAPYBps must not exceed maxAPYBps", ErrInvalidConfiguration)
	}
	if c.BurnThresholdPerLevel == nil || c.BurnThresholdPerLevel.Sign() <= 0 {
		return fmt.Errorf("%w: burnThresholdPerLevel must be positive", ErrInvalidConfiguration)
	}
	if c.BurnThresholdPerLevel.Cmp(numeric.MaxAmount) > 0 {
		return fmt.Errorf("%w: burnThresholdPerLevel exceeds amount domain", ErrInvalidConfiguration)
	}
	return nil
}

func (c Config) threshold() *big.Int {
	if c.BurnThresholdPerLevel == nil {
		return big.NewInt(0)
	}
	return c.BurnThresholdPerLevel
}
