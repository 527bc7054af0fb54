package config

// Pool holds the TOML-facing parameters for one staking product. Values are
// copied into the staking engine after ValidateConfig accepts them.
type Pool struct {
	Active                    bool
	BaseAPYBps                uint32
	MinPeriodDays             uint32
	EarlyWithdrawalPenaltyBps uint32
	CancellationPenaltyBps    uint32
	PaymentFrequencyDays      uint32
}

// Pools groups the three staking products.
type Pools struct {
	FastBurn Pool
	MidTerm  Pool
	LongTerm Pool
}

// Rates carries the dynamic APY policy. BurnThresholdPerLevel is a decimal
// string because the domain maximum does not fit a TOML integer.
type Rates struct {
	MinAPYBps               uint32
	MaxAPYBps               uint32
	BurnThresholdPerLevel   string
	APYIncrementPerLevelBps uint32
}

// Pauses lists the per-module pause switches.
type Pauses struct {
	Staking bool
	Burn    bool
	Rates   bool
}

// Gateway controls the read-only HTTP surface.
type Gateway struct {
	RequestsPerSecond float64
	Burst             int
	ReadTimeoutSecs   uint32
	WriteTimeoutSecs  uint32
}

// Global bundles the runtime policy values enforced by ValidateConfig.
type Global struct {
	Pools  Pools
	Rates  Rates
	Pauses Pauses
}
