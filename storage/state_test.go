package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"emberchain/native/burn"
	"emberchain/native/rates"
	"emberchain/native/staking"
)

func testAddr(suffix byte) [20]byte {
	var addr [20]byte
	addr[19] = suffix
	return addr
}

func TestPositionRoundTrip(t *testing.T) {
	state := NewState(NewMemDB())

	id, err := state.NextPositionID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	position := &staking.Position{
		ID:                 id,
		Owner:              testAddr(1),
		Pool:               staking.PoolMidTerm,
		Principal:          big.NewInt(1_000_000),
		EntryFeePaid:       big.NewInt(10_000),
		OpenedAt:           100,
		LastAccrualAt:      100,
		AccumulatedRewards: big.NewInt(0),
		Status:             staking.StatusActive,
	}
	require.NoError(t, state.PutStakingPosition(position))

	loaded, ok := state.StakingPosition(id)
	require.True(t, ok)
	require.Equal(t, position.Owner, loaded.Owner)
	require.Equal(t, position.Pool, loaded.Pool)
	require.Zero(t, position.Principal.Cmp(loaded.Principal))
	require.Equal(t, staking.StatusActive, loaded.Status)

	_, ok = state.StakingPosition(999)
	require.False(t, ok)
}

func TestNextPositionIDIsMonotonic(t *testing.T) {
	state := NewState(NewMemDB())
	previous := uint64(0)
	for i := 0; i < 10; i++ {
		id, err := state.NextPositionID()
		require.NoError(t, err)
		require.Greater(t, id, previous)
		previous = id
	}
}

func TestPositionsByOwner(t *testing.T) {
	state := NewState(NewMemDB())
	owner := testAddr(7)
	other := testAddr(8)

	for i, addr := range [][20]byte{owner, other, owner, owner} {
		id, err := state.NextPositionID()
		require.NoError(t, err)
		require.NoError(t, state.PutStakingPosition(&staking.Position{
			ID:                 id,
			Owner:              addr,
			Pool:               staking.PoolFastBurn,
			Principal:          big.NewInt(int64(100 + i)),
			EntryFeePaid:       big.NewInt(0),
			AccumulatedRewards: big.NewInt(0),
			Status:             staking.StatusActive,
		}))
	}

	ids, err := state.PositionsByOwner(owner)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 3, 4}, ids)

	ids, err = state.PositionsByOwner(testAddr(9))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestAccountDefaultsToZeroBalances(t *testing.T) {
	state := NewState(NewMemDB())
	addr := testAddr(2)

	account, err := state.GetAccount(addr)
	require.NoError(t, err)
	require.Zero(t, account.BalanceEMBER.Sign())

	account.BalanceEMBER = big.NewInt(42)
	require.NoError(t, state.PutAccount(addr, account))

	reloaded, err := state.GetAccount(addr)
	require.NoError(t, err)
	require.Zero(t, reloaded.BalanceEMBER.Cmp(big.NewInt(42)))
}

func TestBurnHistorySingleton(t *testing.T) {
	state := NewState(NewMemDB())

	history, err := state.BurnHistory()
	require.NoError(t, err)
	require.Zero(t, history.TotalBurned.Sign())

	require.NoError(t, burn.RecordBurn(history, big.NewInt(500), 1_000))
	require.NoError(t, state.PutBurnHistory(history))

	reloaded, err := state.BurnHistory()
	require.NoError(t, err)
	require.Zero(t, reloaded.TotalBurned.Cmp(big.NewInt(500)))
	require.Len(t, reloaded.Windows, 1)
}

func TestRateStateRoundTrip(t *testing.T) {
	state := NewState(NewMemDB())
	addr := testAddr(3)

	_, ok := state.RateState(addr)
	require.False(t, ok)

	user := &rates.UserState{
		CumulativeBurned: big.NewInt(150_000),
		CurrentAPYBps:    1_250,
		NextThreshold:    big.NewInt(200_000),
		LastUpdate:       77,
	}
	require.NoError(t, state.PutRateState(addr, user))

	reloaded, ok := state.RateState(addr)
	require.True(t, ok)
	require.Equal(t, uint32(1_250), reloaded.CurrentAPYBps)
	require.Zero(t, reloaded.CumulativeBurned.Cmp(big.NewInt(150_000)))
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewLevelDB(dir)
	require.NoError(t, err)

	state1 := NewState(db1)
	id, err := state1.NextPositionID()
	require.NoError(t, err)
	require.NoError(t, state1.PutStakingPosition(&staking.Position{
		ID:                 id,
		Owner:              testAddr(5),
		Pool:               staking.PoolLongTerm,
		Principal:          big.NewInt(9_999),
		EntryFeePaid:       big.NewInt(0),
		AccumulatedRewards: big.NewInt(0),
		Status:             staking.StatusActive,
	}))
	db1.Close()

	db2, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	state2 := NewState(db2)
	loaded, ok := state2.StakingPosition(id)
	require.True(t, ok)
	require.Zero(t, loaded.Principal.Cmp(big.NewInt(9_999)))

	next, err := state2.NextPositionID()
	require.NoError(t, err)
	require.Equal(t, id+1, next)
}

func TestMemDBIteratePrefixOrdering(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("a/2"), []byte("two")))
	require.NoError(t, db.Put([]byte("a/1"), []byte("one")))
	require.NoError(t, db.Put([]byte("b/1"), []byte("other")))

	var keys []string
	require.NoError(t, db.IteratePrefix([]byte("a/"), func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	}))
	require.Equal(t, []string{"a/1", "a/2"}, keys)
}
