package storage

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"emberchain/core/types"
	"emberchain/native/burn"
	"emberchain/native/rates"
	"emberchain/native/staking"
)

// Key layout. Position ids are big-endian so iteration order matches numeric
// order; the owner index stores empty values and exists purely for listing.
var (
	keyPositionSeq    = []byte("staking/seq")
	prefixPosition    = []byte("staking/position/")
	prefixOwnerIndex  = []byte("staking/owner/")
	keyBurnHistory    = []byte("burn/history")
	prefixRateState   = []byte("rates/user/")
	prefixAccount     = []byte("account/")
	errCorruptedValue = errors.New("storage: corrupted value")
)

// State is the persistence facade the engines run against. All mutating
// operations are serialised by the state-transition lock in the host; the
// internal mutex only protects the id sequence counter.
type State struct {
	db    Database
	seqMu sync.Mutex
}

// NewState wraps a database in the typed persistence facade.
func NewState(db Database) *State {
	return &State{db: db}
}

// StakingPosition loads a position by id. A missing or undecodable record
// reports absence; the engines treat both as "not found".
func (s *State) StakingPosition(id uint64) (*staking.Position, bool) {
	raw, err := s.db.Get(positionKey(id))
	if err != nil {
		return nil, false
	}
	position := &staking.Position{}
	if err := json.Unmarshal(raw, position); err != nil {
		return nil, false
	}
	return position, true
}

// PutStakingPosition persists a position and maintains the owner index.
func (s *State) PutStakingPosition(position *staking.Position) error {
	if position == nil {
		return fmt.Errorf("%w: nil position", errCorruptedValue)
	}
	raw, err := json.Marshal(position)
	if err != nil {
		return err
	}
	if err := s.db.Put(positionKey(position.ID), raw); err != nil {
		return err
	}
	return s.db.Put(ownerIndexKey(position.Owner, position.ID), []byte{})
}

// NextPositionID atomically increments and returns the position sequence.
// The first id issued is 1; zero is never a valid position id.
func (s *State) NextPositionID() (uint64, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	var current uint64
	raw, err := s.db.Get(keyPositionSeq)
	switch {
	case errors.Is(err, ErrKeyNotFound):
	case err != nil:
		return 0, err
	case len(raw) != 8:
		return 0, fmt.Errorf("%w: position sequence", errCorruptedValue)
	default:
		current = binary.BigEndian.Uint64(raw)
	}
	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := s.db.Put(keyPositionSeq, buf); err != nil {
		return 0, err
	}
	return next, nil
}

// PositionsByOwner returns the ids of every position the owner has ever
// opened, terminal ones included, in ascending id order.
func (s *State) PositionsByOwner(owner [20]byte) ([]uint64, error) {
	prefix := ownerIndexPrefix(owner)
	ids := make([]uint64, 0, 4)
	err := s.db.IteratePrefix(prefix, func(key, _ []byte) error {
		suffix := key[len(prefix):]
		if len(suffix) != 8 {
			return fmt.Errorf("%w: owner index key", errCorruptedValue)
		}
		ids = append(ids, binary.BigEndian.Uint64(suffix))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetAccount loads a ledger account, returning a fresh zero-balance account
// when the address has never been touched.
func (s *State) GetAccount(addr [20]byte) (*types.Account, error) {
	raw, err := s.db.Get(accountKey(addr))
	if errors.Is(err, ErrKeyNotFound) {
		return (&types.Account{}).EnsureBalances(), nil
	}
	if err != nil {
		return nil, err
	}
	account := &types.Account{}
	if err := json.Unmarshal(raw, account); err != nil {
		return nil, err
	}
	return account.EnsureBalances(), nil
}

// PutAccount persists a ledger account.
func (s *State) PutAccount(addr [20]byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("%w: nil account", errCorruptedValue)
	}
	raw, err := json.Marshal(account.EnsureBalances())
	if err != nil {
		return err
	}
	return s.db.Put(accountKey(addr), raw)
}

// BurnHistory loads the protocol-wide burn history singleton, returning a
// fresh empty history before the first burn is recorded.
func (s *State) BurnHistory() (*burn.History, error) {
	raw, err := s.db.Get(keyBurnHistory)
	if errors.Is(err, ErrKeyNotFound) {
		return burn.NewHistory(), nil
	}
	if err != nil {
		return nil, err
	}
	history := &burn.History{}
	if err := json.Unmarshal(raw, history); err != nil {
		return nil, err
	}
	return history, nil
}

// PutBurnHistory persists the burn history singleton.
func (s *State) PutBurnHistory(history *burn.History) error {
	if history == nil {
		return fmt.Errorf("%w: nil burn history", errCorruptedValue)
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.db.Put(keyBurnHistory, raw)
}

// RateState loads the per-user dynamic rate record.
func (s *State) RateState(addr [20]byte) (*rates.UserState, bool) {
	raw, err := s.db.Get(rateStateKey(addr))
	if err != nil {
		return nil, false
	}
	state := &rates.UserState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, false
	}
	return state, true
}

// PutRateState persists the per-user dynamic rate record.
func (s *State) PutRateState(addr [20]byte, state *rates.UserState) error {
	if state == nil {
		return fmt.Errorf("%w: nil rate state", errCorruptedValue)
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Put(rateStateKey(addr), raw)
}

func positionKey(id uint64) []byte {
	buf := make([]byte, len(prefixPosition)+8)
	copy(buf, prefixPosition)
	binary.BigEndian.PutUint64(buf[len(prefixPosition):], id)
	return buf
}

func ownerIndexPrefix(owner [20]byte) []byte {
	encoded := hex.EncodeToString(owner[:])
	buf := make([]byte, 0, len(prefixOwnerIndex)+len(encoded)+1)
	buf = append(buf, prefixOwnerIndex...)
	buf = append(buf, encoded...)
	return append(buf, '/')
}

func ownerIndexKey(owner [20]byte, id uint64) []byte {
	prefix := ownerIndexPrefix(owner)
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], id)
	return buf
}

func accountKey(addr [20]byte) []byte {
	encoded := hex.EncodeToString(addr[:])
	buf := make([]byte, 0, len(prefixAccount)+len(encoded))
	buf = append(buf, prefixAccount...)
	return append(buf, encoded...)
}

func rateStateKey(addr [20]byte) []byte {
	encoded := hex.EncodeToString(addr[:])
	buf := make([]byte, 0, len(prefixRateState)+len(encoded))
	buf = append(buf, prefixRateState...)
	return append(buf, encoded...)
}
