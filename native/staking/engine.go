// Package staking implements the position lifecycle for the emberchain
// staking products: tiered entry fees at open time, cadence-gated interest
// accrual, and the early-exit and cancellation penalty rules. The engine is
// deterministic by construction; every time-dependent operation takes the
// caller's timestamp instead of sampling a clock.
package staking

import (
	"math/big"

	"emberchain/core/events"
	"emberchain/core/types"
	"emberchain/native/common"
	"emberchain/native/fees"
	"emberchain/native/numeric"
)

const (
	// BpsDenominator is the fixed basis-point scale shared across the module.
	BpsDenominator = 10_000
	// DaysPerYear is the annualisation divisor for accrual math.
	DaysPerYear = 365

	secondsPerDay int64 = 24 * 60 * 60

	// withdrawalInterestFeeBps is the flat 1% bite taken from remaining
	// interest on withdrawal, before the category split is applied to it.
	withdrawalInterestFeeBps = 100
)

var accrualDenominator = big.NewInt(DaysPerYear * BpsDenominator)

type engineState interface {
	StakingPosition(id uint64) (*Position, bool)
	PutStakingPosition(position *Position) error
	NextPositionID() (uint64, error)
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, account *types.Account) error
}

// Engine orchestrates the staking position lifecycle. Principal is held by
// the vault address; rewards are paid out of the rewards reserve address.
// Both are ledger accounts owned by the host.
type Engine struct {
	state   engineState
	pools   map[PoolKind]PoolConfig
	emitter events.Emitter
	pauses  common.PauseView
	vault   [20]byte
	reserve [20]byte
}

// NewEngine constructs a staking engine with the default pool parameters and
// a no-op event emitter.
func NewEngine() *Engine {
	return &Engine{
		pools:   DefaultPoolConfigs(),
		emitter: events.NoopEmitter{},
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetPools replaces the pool parameter table. Each entry must already have
// passed Validate; this is the privileged update path, not a runtime check.
func (e *Engine) SetPools(pools map[PoolKind]PoolConfig) {
	if e == nil || pools == nil {
		return
	}
	clone := make(map[PoolKind]PoolConfig, len(pools))
	for kind, cfg := range pools {
		clone[kind] = cfg
	}
	e.pools = clone
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the host's pause switches into the engine.
func (e *Engine) SetPauses(p common.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetVault configures the address holding staked principal.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetRewardsReserve configures the address rewards are paid from.
func (e *Engine) SetRewardsReserve(addr [20]byte) { e.reserve = addr }

// PoolConfigFor returns the parameters for the supplied kind.
func (e *Engine) PoolConfigFor(kind PoolKind) (PoolConfig, bool) {
	cfg, ok := e.pools[kind]
	return cfg, ok
}

// OpenPosition creates a new Active position for the owner. The tiered entry
// fee is computed and recorded for audit but is not subtracted from the
// principal; the host charges it through a separate transfer. The principal
// itself moves from the owner to the vault.
func (e *Engine) OpenPosition(owner [20]byte, pool PoolKind, principal *big.Int, now int64) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := common.Guard(e.pauses, common.ModuleStaking); err != nil {
		return nil, err
	}
	cfg, ok := e.pools[pool]
	if !ok || !cfg.Active {
		return nil, ErrPoolInactive
	}
	if principal == nil || principal.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	amount := numeric.Clamp(principal)

	quote := fees.EntryFee(amount)

	moves := newLedger(e.state)
	if err := moves.move(owner, e.vault, amount); err != nil {
		return nil, err
	}

	id, err := e.state.NextPositionID()
	if err != nil {
		return nil, err
	}
	position := &Position{
		ID:                 id,
		Owner:              owner,
		Pool:               pool,
		Principal:          amount,
		EntryFeePaid:       quote.FeeQuote,
		OpenedAt:           now,
		LastAccrualAt:      now,
		AccumulatedRewards: big.NewInt(0),
		Status:             StatusActive,
	}
	// Escrow the principal before the position becomes visible: a position
	// must never exist without its principal in the vault.
	if err := moves.commit(); err != nil {
		return nil, err
	}
	if err := e.state.PutStakingPosition(position); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StakingOpened{
		ID:           id,
		Owner:        owner,
		Pool:         string(pool),
		Principal:    amount,
		EntryFeeBps:  quote.FeeBps,
		EntryFee:     quote.FeeQuote,
		OpenedAtUnix: now,
	})
	return position.Clone(), nil
}

// Accrue posts pending interest onto the position if at least one full payment
// period has elapsed. Partial periods never post early: the remainder days
// stay pending and LastAccrualAt advances only by whole credited periods.
// A terminal position yields a zero delta without mutating anything.
func (e *Engine) Accrue(id uint64, caller [20]byte, now int64, rateBps uint32) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	position, ok := e.state.StakingPosition(id)
	if !ok {
		return nil, ErrPositionNotFound
	}
	if position.Owner != caller {
		return nil, ErrNotOwner
	}
	position = position.Clone()
	delta, creditedDays, err := e.accrue(position, now, rateBps)
	if err != nil {
		return nil, err
	}
	if delta.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if err := e.state.PutStakingPosition(position); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StakingAccrued{
		ID:           position.ID,
		Owner:        position.Owner,
		Pool:         string(position.Pool),
		RateBps:      rateBps,
		CreditedDays: creditedDays,
		RewardsDelta: delta,
		AccruedTotal: position.AccumulatedRewards,
	})
	return delta, nil
}

// PendingRewards projects the reward delta the next Accrue call would post,
// without mutating the position. Reads are pure and may be served against a
// snapshot.
func (e *Engine) PendingRewards(id uint64, now int64, rateBps uint32) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	position, ok := e.state.StakingPosition(id)
	if !ok {
		return nil, ErrPositionNotFound
	}
	clone := position.Clone()
	delta, _, err := e.accrue(clone, now, rateBps)
	if err != nil {
		return nil, err
	}
	return delta, nil
}

// Withdraw settles an Active position: pending interest is folded in first,
// the per-pool early-exit penalty is deducted from rewards (never principal),
// the 1% interest fee is taken from what remains, and the position turns
// Completed. The result carries the schedule splits for the host to route.
func (e *Engine) Withdraw(id uint64, caller [20]byte, now int64, rateBps uint32) (*WithdrawalResult, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := common.Guard(e.pauses, common.ModuleStaking); err != nil {
		return nil, err
	}
	position, ok := e.state.StakingPosition(id)
	if !ok {
		return nil, ErrPositionNotFound
	}
	if position.Owner != caller {
		return nil, ErrNotOwner
	}
	if position.Status != StatusActive {
		return nil, ErrPositionNotActive
	}
	cfg := e.pools[position.Pool]
	position = position.Clone()

	if _, _, err := e.accrue(position, now, rateBps); err != nil {
		return nil, err
	}

	daysStaked := elapsedDays(position.OpenedAt, now)
	early := daysStaked < uint64(cfg.MinPeriodDays)

	penalty := big.NewInt(0)
	if early {
		if rule, ok := earlyPenaltyRules[position.Pool]; ok {
			penalty = rule(cfg, position.Principal, position.AccumulatedRewards)
		}
	}
	rewardsAfterPenalty := numeric.SatSub(position.AccumulatedRewards, penalty)

	interestFee := bpsOf(rewardsAfterPenalty, withdrawalInterestFeeBps)
	halfA := new(big.Int).Quo(interestFee, big.NewInt(2))
	halfB := new(big.Int).Sub(interestFee, halfA)
	rewardsNet := numeric.SatSub(rewardsAfterPenalty, interestFee)

	feeCategory := fees.CategoryInterestWithdrawal
	if early {
		feeCategory = fees.CategoryEarlyWithdrawal
	}

	// Stage both payouts before anything persists: an underfunded reserve
	// must abort the settlement with the vault untouched and the position
	// still Active, or a retry would pay the principal twice.
	net := numeric.SatAdd(position.Principal, rewardsNet)
	moves := newLedger(e.state)
	if err := moves.move(e.vault, position.Owner, position.Principal); err != nil {
		return nil, err
	}
	if rewardsNet.Sign() > 0 {
		if err := moves.move(e.reserve, position.Owner, rewardsNet); err != nil {
			return nil, err
		}
	}

	result := &WithdrawalResult{
		PositionID:      position.ID,
		Early:           early,
		DaysStaked:      daysStaked,
		RewardsAccrued:  new(big.Int).Set(position.AccumulatedRewards),
		Penalty:         penalty,
		PenaltySplit:    toSplitResult(fees.Split(penalty, feeCategory)),
		InterestFee:     interestFee,
		InterestFeeHalf: [2]*big.Int{halfA, halfB},
		InterestSplit:   toSplitResult(fees.Split(interestFee, feeCategory)),
		NetAmount:       net,
	}

	// The position turns terminal before the balances land so a partially
	// persisted settlement can never be replayed.
	position.Status = StatusCompleted
	if err := e.state.PutStakingPosition(position); err != nil {
		return nil, err
	}
	if err := moves.commit(); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StakingWithdrawn{
		ID:          position.ID,
		Owner:       position.Owner,
		Pool:        string(position.Pool),
		Early:       early,
		Penalty:     penalty,
		InterestFee: interestFee,
		NetAmount:   net,
	})
	return result, nil
}

// Cancel terminates an Active position without accruing: every pending and
// already-credited reward is forfeited unconditionally, and the refund is the
// principal minus the pool's cancellation penalty.
func (e *Engine) Cancel(id uint64, caller [20]byte, now int64) (*CancellationResult, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := common.Guard(e.pauses, common.ModuleStaking); err != nil {
		return nil, err
	}
	position, ok := e.state.StakingPosition(id)
	if !ok {
		return nil, ErrPositionNotFound
	}
	if position.Owner != caller {
		return nil, ErrNotOwner
	}
	if position.Status != StatusActive {
		return nil, ErrPositionNotActive
	}
	cfg := e.pools[position.Pool]
	position = position.Clone()

	penalty := big.NewInt(0)
	if rule, ok := cancellationRules[position.Pool]; ok {
		penalty = rule(cfg, position.Principal)
	}
	refund := numeric.SatSub(position.Principal, penalty)
	forfeited := new(big.Int).Set(position.AccumulatedRewards)

	moves := newLedger(e.state)
	if err := moves.move(e.vault, position.Owner, refund); err != nil {
		return nil, err
	}

	result := &CancellationResult{
		PositionID:   position.ID,
		Penalty:      penalty,
		PenaltySplit: toSplitResult(fees.Split(penalty, fees.CategoryCancellation)),
		Refund:       refund,
		Forfeited:    forfeited,
	}

	position.Status = StatusCancelled
	if err := e.state.PutStakingPosition(position); err != nil {
		return nil, err
	}
	if err := moves.commit(); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StakingCancelled{
		ID:        position.ID,
		Owner:     position.Owner,
		Pool:      string(position.Pool),
		Penalty:   penalty,
		Refund:    refund,
		Forfeited: forfeited,
	})
	return result, nil
}

// accrue applies the cadence-gated reward computation to the position in
// place. It returns the posted delta and the number of credited days; both
// are zero when the position is terminal or a full period has not elapsed.
func (e *Engine) accrue(position *Position, now int64, rateBps uint32) (*big.Int, uint64, error) {
	if position.Status != StatusActive {
		return big.NewInt(0), 0, nil
	}
	if now < position.LastAccrualAt {
		return nil, 0, ErrNonMonotonicTime
	}
	cfg := e.pools[position.Pool]
	if cfg.PaymentFrequencyDays == 0 {
		return nil, 0, ErrInvalidConfiguration
	}
	elapsed := elapsedDays(position.LastAccrualAt, now)
	if elapsed < uint64(cfg.PaymentFrequencyDays) {
		return big.NewInt(0), 0, nil
	}
	periods := elapsed / uint64(cfg.PaymentFrequencyDays)
	creditedDays := periods * uint64(cfg.PaymentFrequencyDays)

	numerator := numeric.SatMul(position.Principal, new(big.Int).SetUint64(uint64(rateBps)))
	numerator = numeric.SatMul(numerator, new(big.Int).SetUint64(creditedDays))
	delta := numeric.Div(numerator, accrualDenominator)

	position.AccumulatedRewards = numeric.SatAdd(position.AccumulatedRewards, delta)
	position.LastAccrualAt += int64(creditedDays) * secondsPerDay
	return delta, creditedDays, nil
}

// ledger stages account mutations in memory so multi-move settlements are
// all-or-nothing: nothing is persisted until commit, and a move that fails
// its balance check leaves every account untouched.
type ledger struct {
	state    engineState
	accounts map[[20]byte]*types.Account
	order    [][20]byte
}

func newLedger(state engineState) *ledger {
	return &ledger{state: state, accounts: make(map[[20]byte]*types.Account)}
}

func (l *ledger) account(addr [20]byte) (*types.Account, error) {
	if account, ok := l.accounts[addr]; ok {
		return account, nil
	}
	loaded, err := l.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	loaded = loaded.EnsureBalances()
	staged := &types.Account{
		Nonce:        loaded.Nonce,
		BalanceEMBER: new(big.Int).Set(loaded.BalanceEMBER),
		BalanceQuote: new(big.Int).Set(loaded.BalanceQuote),
	}
	l.accounts[addr] = staged
	l.order = append(l.order, addr)
	return staged, nil
}

// move debits the source and credits the destination inside the staged view.
func (l *ledger) move(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	source, err := l.account(from)
	if err != nil {
		return err
	}
	if source.BalanceEMBER.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	dest, err := l.account(to)
	if err != nil {
		return err
	}
	source.BalanceEMBER = new(big.Int).Sub(source.BalanceEMBER, amount)
	dest.BalanceEMBER = new(big.Int).Add(dest.BalanceEMBER, amount)
	return nil
}

func (l *ledger) commit() error {
	for _, addr := range l.order {
		if err := l.state.PutAccount(addr, l.accounts[addr]); err != nil {
			return err
		}
	}
	return nil
}

func elapsedDays(from, to int64) uint64 {
	if to <= from {
		return 0
	}
	return uint64((to - from) / secondsPerDay)
}

func toSplitResult(d fees.Distribution) SplitResult {
	return SplitResult{Burn: d.Burn, Staking: d.Staking, Rewards: d.Rewards, Team: d.Team}
}
