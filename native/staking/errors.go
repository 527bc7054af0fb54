package staking

import "errors"

// Every validation failure is returned to the immediate caller as a typed
// error; nothing panics and nothing is retried internally. The single
// intentional non-error is the "too early to post rewards" accrual case,
// which returns a zero delta by design.
var (
	ErrInvalidAmount        = errors.New("staking engine: amount must be positive")
	ErrPositionNotFound     = errors.New("staking engine: position not found")
	ErrNotOwner             = errors.New("staking engine: caller does not own position")
	ErrPositionNotActive    = errors.New("staking engine: position is not active")
	ErrPoolInactive         = errors.New("staking engine: pool is not active")
	ErrNonMonotonicTime     = errors.New("staking engine: timestamp precedes last accrual")
	ErrInsufficientBalance  = errors.New("staking engine: insufficient balance")
	ErrInvalidConfiguration = errors.New("staking engine: invalid configuration")
	ErrNilState             = errors.New("staking engine: state not configured")
)
