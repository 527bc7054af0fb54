package core

import (
	"errors"
	"log/slog"
	"math/big"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"emberchain/config"
	"emberchain/core/events"
	"emberchain/native/burn"
	"emberchain/native/common"
	"emberchain/native/fees"
	"emberchain/native/rates"
	"emberchain/native/staking"
	"emberchain/observability/metrics"
	"emberchain/storage"
)

// ErrInsufficientBurnBalance is returned when an explicit burn exceeds the
// caller's spendable balance.
var ErrInsufficientBurnBalance = errors.New("node: insufficient balance for burn")

// Vault and reserve addresses are fixed module accounts derived by hashing
// their tags, so they cannot collide with externally owned addresses.
var (
	VaultAddress   = moduleAddress("ember/staking-vlt")
	ReserveAddress = moduleAddress("ember/rewards-rsv")
)

func moduleAddress(tag string) [20]byte {
	hash := ethcrypto.Keccak256([]byte(tag))
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

type pauseSwitches struct {
	staking bool
	burn    bool
	rates   bool
}

func (p pauseSwitches) IsPaused(module string) bool {
	switch module {
	case "staking":
		return p.staking
	case "burn":
		return p.burn
	case "rates":
		return p.rates
	}
	return false
}

// Node owns the engines and their persistence. All mutating operations are
// serialised behind a single writer lock; reads take snapshots under the
// shared lock and never mutate engine state.
type Node struct {
	mu       sync.RWMutex
	state    *storage.State
	engine   *staking.Engine
	emitter  events.Emitter
	pools    map[staking.PoolKind]staking.PoolConfig
	ratesCfg rates.Config
	pauses   pauseSwitches
	logger   *slog.Logger
	metrics  *metrics.StakingMetrics
}

// NewNode wires the engines against the supplied database using a validated
// global configuration. A nil emitter falls back to the no-op sink.
func NewNode(db storage.Database, global config.Global, emitter events.Emitter, logger *slog.Logger) (*Node, error) {
	if err := config.ValidateConfig(global); err != nil {
		return nil, err
	}
	ratesCfg, err := global.RatesConfig()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}

	state := storage.NewState(db)
	pools := global.PoolConfigs()
	pauses := pauseSwitches{
		staking: global.Pauses.Staking,
		burn:    global.Pauses.Burn,
		rates:   global.Pauses.Rates,
	}

	engine := staking.NewEngine()
	engine.SetState(state)
	engine.SetPools(pools)
	engine.SetEmitter(emitter)
	engine.SetPauses(pauses)
	engine.SetVault(VaultAddress)
	engine.SetRewardsReserve(ReserveAddress)

	return &Node{
		state:    state,
		engine:   engine,
		emitter:  emitter,
		pools:    pools,
		ratesCfg: ratesCfg,
		pauses:   pauses,
		logger:   logger,
		metrics:  metrics.Staking(),
	}, nil
}

// State exposes the persistence facade for host-side tooling such as genesis
// balance seeding.
func (n *Node) State() *storage.State { return n.state }

// OpenPosition stakes principal into the given pool and reports the routed
// entry fee split for the host's treasury accounting.
func (n *Node) OpenPosition(owner [20]byte, pool staking.PoolKind, principal *big.Int, now int64) (*staking.Position, fees.Distribution, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	position, err := n.engine.OpenPosition(owner, pool, principal, now)
	if err != nil {
		return nil, fees.Distribution{}, err
	}
	split := fees.Split(position.EntryFeePaid, fees.CategoryStakingEntry)
	n.emitFeeSplit(fees.CategoryStakingEntry, position.EntryFeePaid, split)
	n.metrics.ObservePositionOpened(string(pool))
	n.logger.Info("position opened",
		"id", position.ID,
		"pool", string(pool),
		"principal", position.Principal.String(),
		"entryFee", position.EntryFeePaid.String(),
	)
	return position, split, nil
}

// Accrue posts pending interest for the position at the owner's current
// effective rate.
func (n *Node) Accrue(id uint64, owner [20]byte, now int64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	rateBps, pool, err := n.effectiveRateLocked(id, owner)
	if err != nil {
		return nil, err
	}
	delta, err := n.engine.Accrue(id, owner, now, rateBps)
	if err != nil {
		return nil, err
	}
	n.metrics.ObserveRewardsAccrued(string(pool), delta)
	return delta, nil
}

// Withdraw settles a position. The burn shares of the penalty and interest
// fee splits are folded into the global burn history, which in turn feeds the
// dynamic rate level.
func (n *Node) Withdraw(id uint64, owner [20]byte, now int64) (*staking.WithdrawalResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	rateBps, pool, err := n.effectiveRateLocked(id, owner)
	if err != nil {
		return nil, err
	}
	result, err := n.engine.Withdraw(id, owner, now, rateBps)
	if err != nil {
		return nil, err
	}

	category := fees.CategoryInterestWithdrawal
	if result.Early {
		category = fees.CategoryEarlyWithdrawal
	}
	if result.Penalty.Sign() > 0 {
		n.emitFeeSplit(category, result.Penalty, toDistribution(result.PenaltySplit))
		n.metrics.ObservePenalty(string(pool), "early_withdrawal", result.Penalty)
	}
	if result.InterestFee.Sign() > 0 {
		n.emitFeeSplit(category, result.InterestFee, toDistribution(result.InterestSplit))
	}
	if err := n.recordProtocolBurnLocked(sumBurnShares(result.PenaltySplit, result.InterestSplit), now); err != nil {
		return nil, err
	}
	n.metrics.ObservePositionWithdrawn(string(pool), result.Early)
	n.logger.Info("position withdrawn",
		"id", id,
		"pool", string(pool),
		"early", result.Early,
		"penalty", result.Penalty.String(),
		"net", result.NetAmount.String(),
	)
	return result, nil
}

// Cancel terminates a position, forfeiting rewards. The penalty's burn share
// is folded into the global burn history.
func (n *Node) Cancel(id uint64, owner [20]byte, now int64) (*staking.CancellationResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	position, ok := n.state.StakingPosition(id)
	if !ok {
		return nil, staking.ErrPositionNotFound
	}
	pool := position.Pool

	result, err := n.engine.Cancel(id, owner, now)
	if err != nil {
		return nil, err
	}
	if result.Penalty.Sign() > 0 {
		n.emitFeeSplit(fees.CategoryCancellation, result.Penalty, toDistribution(result.PenaltySplit))
		n.metrics.ObservePenalty(string(pool), "cancellation", result.Penalty)
	}
	if err := n.recordProtocolBurnLocked(result.PenaltySplit.Burn, now); err != nil {
		return nil, err
	}
	n.metrics.ObservePositionCancelled(string(pool))
	n.logger.Info("position cancelled",
		"id", id,
		"pool", string(pool),
		"penalty", result.Penalty.String(),
		"refund", result.Refund.String(),
	)
	return result, nil
}

// RecordBurn destroys spendable balance for the caller, folds the burn into
// the global history, and advances the caller's dynamic rate state.
func (n *Node) RecordBurn(owner [20]byte, amount *big.Int, now int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := common.Guard(n.pauses, common.ModuleBurn); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return staking.ErrInvalidAmount
	}
	account, err := n.state.GetAccount(owner)
	if err != nil {
		return err
	}
	if account.BalanceEMBER.Cmp(amount) < 0 {
		return ErrInsufficientBurnBalance
	}
	account.BalanceEMBER = new(big.Int).Sub(account.BalanceEMBER, amount)
	if err := n.state.PutAccount(owner, account); err != nil {
		return err
	}

	if err := n.recordProtocolBurnLocked(amount, now); err != nil {
		return err
	}

	userState, _ := n.state.RateState(owner)
	userState = rates.ApplyUserBurn(userState, amount, n.ratesCfg, now)
	if err := n.state.PutRateState(owner, userState); err != nil {
		return err
	}
	n.emitter.Emit(events.RateLevelChanged{
		User:             owner,
		Pool:             "network",
		CumulativeBurned: userState.CumulativeBurned,
		RateBps:          userState.CurrentAPYBps,
		NextThreshold:    userState.NextThreshold,
	})
	return nil
}

// recordProtocolBurnLocked folds an already-destroyed amount into the burn
// history. Callers hold the writer lock.
func (n *Node) recordProtocolBurnLocked(amount *big.Int, now int64) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	history, err := n.state.BurnHistory()
	if err != nil {
		return err
	}
	if err := burn.RecordBurn(history, amount, now); err != nil {
		return err
	}
	if err := n.state.PutBurnHistory(history); err != nil {
		return err
	}
	n.metrics.ObserveBurnRecorded(history.TotalBurned)
	weighted := burn.TimeWeightedBurn(history)
	level := rates.RateFromTimeWeighted(weighted, n.ratesCfg)
	n.metrics.SetRateLevel("network", level.Level)
	n.emitter.Emit(events.BurnRecorded{
		Amount:      amount,
		TotalBurned: history.TotalBurned,
		Last24h:     history.Last24h,
		Last7d:      history.Last7d,
		Last30d:     history.Last30d,
		AtUnix:      now,
	})
	return nil
}

// effectiveRateLocked resolves the rate a position accrues at: the pool's
// base APY, lifted by the owner's dynamic rate when their burns have earned a
// higher one. Callers hold a lock.
func (n *Node) effectiveRateLocked(id uint64, owner [20]byte) (uint32, staking.PoolKind, error) {
	position, ok := n.state.StakingPosition(id)
	if !ok {
		return 0, "", staking.ErrPositionNotFound
	}
	cfg, ok := n.pools[position.Pool]
	if !ok {
		return 0, position.Pool, staking.ErrPoolInactive
	}
	rateBps := cfg.BaseAPYBps
	if userState, ok := n.state.RateState(owner); ok && userState.CurrentAPYBps > rateBps {
		rateBps = userState.CurrentAPYBps
	}
	return rateBps, position.Pool, nil
}

func (n *Node) emitFeeSplit(category fees.Category, total *big.Int, split fees.Distribution) {
	if total == nil || total.Sign() == 0 {
		return
	}
	n.emitter.Emit(events.FeeSplit{
		Category: string(category),
		Total:    total,
		Burn:     split.Burn,
		Staking:  split.Staking,
		Rewards:  split.Rewards,
		Team:     split.Team,
	})
}

// --- read-only snapshot surface (gateway backend) ---

// Position returns a deep copy of the position.
func (n *Node) Position(id uint64) (*staking.Position, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	position, ok := n.state.StakingPosition(id)
	if !ok {
		return nil, false
	}
	return position.Clone(), true
}

// PendingRewards projects the next accrual without mutating the position.
func (n *Node) PendingRewards(id uint64, now int64) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	position, ok := n.state.StakingPosition(id)
	if !ok {
		return nil, staking.ErrPositionNotFound
	}
	rateBps, _, err := n.effectiveRateLocked(id, position.Owner)
	if err != nil {
		return nil, err
	}
	return n.engine.PendingRewards(id, now, rateBps)
}

// PositionsByOwner loads every position the owner has opened, terminal ones
// included.
func (n *Node) PositionsByOwner(owner [20]byte) ([]*staking.Position, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids, err := n.state.PositionsByOwner(owner)
	if err != nil {
		return nil, err
	}
	positions := make([]*staking.Position, 0, len(ids))
	for _, id := range ids {
		if position, ok := n.state.StakingPosition(id); ok {
			positions = append(positions, position.Clone())
		}
	}
	return positions, nil
}

// PoolRate reports the pool's base APY alongside the network-wide dynamic
// level derived from the time-weighted burn.
func (n *Node) PoolRate(pool staking.PoolKind) (uint32, rates.LevelRate, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	cfg, ok := n.pools[pool]
	if !ok {
		return 0, rates.LevelRate{}, false
	}
	history, err := n.state.BurnHistory()
	if err != nil {
		return 0, rates.LevelRate{}, false
	}
	weighted := burn.TimeWeightedBurn(history)
	return cfg.BaseAPYBps, rates.RateFromTimeWeighted(weighted, n.ratesCfg), true
}

// BurnSummary returns a snapshot of the burn history and its time-weighted
// aggregate.
func (n *Node) BurnSummary() (*burn.History, *big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	history, err := n.state.BurnHistory()
	if err != nil {
		return nil, nil, err
	}
	clone := history.Clone()
	return clone, burn.TimeWeightedBurn(clone), nil
}

// UserRate returns the caller's dynamic rate state, if any burns have been
// attributed to them.
func (n *Node) UserRate(owner [20]byte) (*rates.UserState, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	userState, ok := n.state.RateState(owner)
	if !ok {
		return nil, false
	}
	return userState.Clone(), true
}

func sumBurnShares(splits ...staking.SplitResult) *big.Int {
	total := big.NewInt(0)
	for _, split := range splits {
		if split.Burn != nil {
			total.Add(total, split.Burn)
		}
	}
	return total
}

func toDistribution(split staking.SplitResult) fees.Distribution {
	return fees.Distribution{Burn: split.Burn, Staking: split.Staking, Rewards: split.Rewards, Team: split.Team}
}
