package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

var (
	wallet = types.HexToAddress("Mx00000000000000000000000000000000000000a1")
	alice  = types.HexToAddress("Mx00000000000000000000000000000000000000a2")
)

func newTestState(t *testing.T) (*State, db.DB) {
	t.Helper()

	stateDB := db.NewMemDB()
	s, err := NewState(0, stateDB, events.NewEventsStore(db.NewMemDB()), 1024, 0)
	require.NoError(t, err)

	return s, stateDB
}

func TestState_ExecCommits(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	var token types.Address
	require.NoError(t, s.Exec(func() error {
		token = s.Deploy(wallet)
		if err := s.Assets.Create(token, "TKN", 18, wallet); err != nil {
			return err
		}
		return s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(10))
	}))

	assert.Equal(t, helpers.ExpandTo18Decimals(10), s.Assets.BalanceOf(token, alice))
	assert.Equal(t, 1, s.Events().Pending())
	assert.Equal(t, 0, s.Journal.OpIndex())
}

func TestState_ExecRollback(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	token := CreateAddress(wallet, 0)
	failure := errors.New("failure")
	err := s.Exec(func() error {
		require.Equal(t, token, s.Deploy(wallet))
		require.NoError(t, s.Assets.Create(token, "TKN", 18, wallet))
		require.NoError(t, s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(10)))
		return failure
	})
	require.ErrorIs(t, err, failure)

	assert.False(t, s.Assets.Exists(token))
	assert.True(t, s.Assets.BalanceOf(token, alice).IsZero())
	assert.Equal(t, 0, s.Events().Pending())
	assert.Equal(t, uint64(0), s.Nonce(wallet))
	assert.Equal(t, token, s.Deploy(wallet), "nonce is reused after a reverted deploy")
}

func TestState_ExecRevertsOnInvariant(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	token := s.Deploy(wallet)
	require.NoError(t, s.Exec(func() error {
		return s.Assets.Create(token, "TKN", 18, wallet)
	}))

	err := s.Exec(func() error {
		if err := s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(1)); err != nil {
			return err
		}
		s.Checker.AddAsset(token, big.NewInt(1))
		return nil
	})
	require.Error(t, err)
	assert.True(t, s.Assets.BalanceOf(token, alice).IsZero())
	assert.True(t, s.Assets.TotalSupply(token).IsZero())

	require.NoError(t, s.Exec(func() error {
		return s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(1))
	}), "checker is reset after a reverted call")
}

func TestState_Deploy(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	first := s.Deploy(wallet)
	second := s.Deploy(wallet)
	other := s.Deploy(alice)

	assert.NotEqual(t, first, second)
	assert.Equal(t, CreateAddress(wallet, 0), first)
	assert.Equal(t, CreateAddress(wallet, 1), second)
	assert.Equal(t, CreateAddress(alice, 0), other)
	assert.Equal(t, uint64(2), s.Nonce(wallet))
}

func TestState_SetBlockTime(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	require.NoError(t, s.SetBlockTime(100))
	require.NoError(t, s.SetBlockTime(100))
	require.ErrorIs(t, s.SetBlockTime(99), ErrorTimeBackwards)
	assert.Equal(t, uint64(100), s.BlockTime())
	assert.Equal(t, uint64(100), NewCheckState(s).BlockTime())
}

func TestState_CommitLoad(t *testing.T) {
	t.Parallel()
	s, stateDB := newTestState(t)

	require.NoError(t, s.SetBlockTime(1641907057))
	var token types.Address
	require.NoError(t, s.Exec(func() error {
		token = s.Deploy(wallet)
		if err := s.Assets.Create(token, "TKN", 18, wallet); err != nil {
			return err
		}
		if err := s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(10)); err != nil {
			return err
		}
		return s.Swap.Deploy(s.Deploy(wallet), wallet)
	}))

	hash, err := s.Commit()
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.Equal(t, int64(1), s.Height())
	assert.Equal(t, 0, s.Events().Pending())
	assert.Len(t, s.Events().LoadEvents(1), 1)

	loaded, err := NewState(0, stateDB, events.NewEventsStore(db.NewMemDB()), 1024, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), loaded.Height())
	assert.Equal(t, uint64(1641907057), loaded.BlockTime())
	assert.Equal(t, uint64(2), loaded.Nonce(wallet))
	assert.Equal(t, helpers.ExpandTo18Decimals(10), loaded.Assets.BalanceOf(token, alice))
	assert.Equal(t, s.Swap.Address(), loaded.Swap.Address())
	assert.Equal(t, s.Export(), loaded.Export())
	exported := loaded.Export()
	require.NoError(t, exported.Verify())
}

func TestState_KeepLastStates(t *testing.T) {
	t.Parallel()
	s, err := NewState(0, db.NewMemDB(), events.NewEventsStore(db.NewMemDB()), 1024, 2)
	require.NoError(t, err)

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, s.SetBlockTime(i))
		_, err := s.Commit()
		require.NoError(t, err)
	}

	assert.Equal(t, []int{3, 4, 5}, s.Tree().AvailableVersions())
}

func TestState_CheckStateAtHeight(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	var token types.Address
	require.NoError(t, s.Exec(func() error {
		token = s.Deploy(wallet)
		if err := s.Assets.Create(token, "TKN", 18, wallet); err != nil {
			return err
		}
		return s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(1))
	}))
	_, err := s.Commit()
	require.NoError(t, err)

	require.NoError(t, s.Exec(func() error {
		return s.Assets.Mint(token, wallet, alice, helpers.ExpandTo18Decimals(1))
	}))
	_, err = s.Commit()
	require.NoError(t, err)

	old, err := s.CheckStateAtHeight(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), old.Height())
	assert.Equal(t, helpers.ExpandTo18Decimals(1), old.Assets().BalanceOf(token, alice))

	live, err := s.CheckStateAtHeight(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), live.Height())
	assert.Equal(t, helpers.ExpandTo18Decimals(2), live.Assets().BalanceOf(token, alice))

	_, err = s.CheckStateAtHeight(7)
	require.Error(t, err)
}
