package exchange

import (
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/state/assets"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/checker"
	"github.com/MinterTeam/minter-swap/coreV2/state/journal"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/helpers"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

var (
	token   = types.HexToAddress("Mx0000000000000000000000000000000000000a01")
	factory = types.HexToAddress("Mx00000000000000000000000000000000000000f1")
	wallet  = types.HexToAddress("Mx00000000000000000000000000000000000000a1")
	trader  = types.HexToAddress("Mx00000000000000000000000000000000000000b1")
)

const deadline = ^uint64(0)

func newTestExchange(t *testing.T) (*Exchanges, *Exchange, *assets.Assets, *checker.Checker) {
	t.Helper()

	stateBus := bus.NewBus()
	stateBus.SetJournal(journal.New())
	c := checker.NewChecker(stateBus)
	a := assets.NewAssets(stateBus)
	e := NewExchanges(stateBus)

	require.NoError(t, a.Create(token, "TKN", 18, wallet))
	require.NoError(t, a.Mint(token, wallet, wallet, helpers.ExpandTo18Decimals(10000)))
	require.NoError(t, a.AddNative(wallet, helpers.ExpandTo18Decimals(100)))
	require.NoError(t, a.AddNative(trader, helpers.ExpandTo18Decimals(100)))

	require.NoError(t, e.Deploy(factory))
	x, err := e.CreateExchange(token)
	require.NoError(t, err)
	require.NoError(t, a.Approve(token, wallet, x.Address(), types.MaxUint256))

	return e, x, a, c
}

func TestExchanges_CreateExchange(t *testing.T) {
	e, x, a, _ := newTestExchange(t)

	require.Equal(t, ExchangeAddress(factory, token), x.Address())
	address, ok := e.GetExchange(token)
	require.True(t, ok)
	require.Equal(t, x.Address(), address)
	got, ok := e.GetToken(x.Address())
	require.True(t, ok)
	require.Equal(t, token, got)
	require.True(t, a.Exists(x.Address()))

	_, err := e.CreateExchange(token)
	require.ErrorIs(t, err, ErrorExchangeExists)
	_, err = e.CreateExchange(types.ZeroAddress)
	require.ErrorIs(t, err, ErrorInvalidToken)
	_, err = e.CreateExchange(trader)
	require.ErrorIs(t, err, ErrorInvalidToken)

	_, ok = e.GetExchange(trader)
	require.False(t, ok)
	require.ErrorIs(t, e.Deploy(factory), ErrorFactoryExists)
}

func TestExchange_Liquidity(t *testing.T) {
	_, x, a, c := newTestExchange(t)

	_, err := x.AddLiquidity(wallet, new(uint256.Int), helpers.ExpandTo18Decimals(10), deadline, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrorInvalidArgument)

	liquidity, err := x.AddLiquidity(wallet, new(uint256.Int), helpers.ExpandTo18Decimals(10), deadline, helpers.ExpandTo18Decimals(5))
	require.NoError(t, err)
	require.Equal(t, helpers.ExpandTo18Decimals(5), liquidity)

	native, tokens := x.Reserves()
	require.Equal(t, helpers.ExpandTo18Decimals(5), native)
	require.Equal(t, helpers.ExpandTo18Decimals(10), tokens)

	_, err = x.AddLiquidity(wallet, uint256.NewInt(1), helpers.ExpandTo18Decimals(1), deadline, helpers.ExpandTo18Decimals(1))
	require.ErrorIs(t, err, ErrorExcessiveInput)

	liquidity, err = x.AddLiquidity(wallet, uint256.NewInt(1), helpers.ExpandTo18Decimals(3), deadline, helpers.ExpandTo18Decimals(1))
	require.NoError(t, err)
	require.Equal(t, helpers.ExpandTo18Decimals(1), liquidity)
	_, tokens = x.Reserves()
	require.Equal(t, new(uint256.Int).AddUint64(helpers.ExpandTo18Decimals(12), 1), tokens)

	nativeAmount, tokenAmount, err := x.RemoveLiquidity(wallet, helpers.ExpandTo18Decimals(3), uint256.NewInt(1), uint256.NewInt(1), deadline)
	require.NoError(t, err)
	require.Equal(t, helpers.ExpandTo18Decimals(3), nativeAmount)
	require.Equal(t, new(uint256.Int).Div(new(uint256.Int).Mul(helpers.ExpandTo18Decimals(3), tokens), helpers.ExpandTo18Decimals(6)), tokenAmount)
	require.Equal(t, helpers.ExpandTo18Decimals(3), a.BalanceOf(x.Address(), wallet))

	_, _, err = x.RemoveLiquidity(wallet, helpers.ExpandTo18Decimals(1), helpers.ExpandTo18Decimals(2), uint256.NewInt(1), deadline)
	require.ErrorIs(t, err, ErrorInsufficientOutput)

	require.NoError(t, c.Check())
}

func TestExchange_Swaps(t *testing.T) {
	_, x, a, _ := newTestExchange(t)

	_, err := x.AddLiquidity(wallet, new(uint256.Int), helpers.ExpandTo18Decimals(10), deadline, helpers.ExpandTo18Decimals(5))
	require.NoError(t, err)

	price, err := x.GetNativeToTokenInputPrice(helpers.ExpandTo18Decimals(1))
	require.NoError(t, err)
	expected, err := uint256.FromDecimal("1662497915624478906")
	require.NoError(t, err)
	require.Equal(t, expected, price)

	_, err = x.NativeToTokenSwapInput(trader, new(uint256.Int).AddUint64(expected, 1), deadline, helpers.ExpandTo18Decimals(1))
	require.ErrorIs(t, err, ErrorInsufficientOutput)

	bought, err := x.NativeToTokenSwapInput(trader, expected, deadline, helpers.ExpandTo18Decimals(1))
	require.NoError(t, err)
	require.Equal(t, expected, bought)
	require.Equal(t, expected, a.BalanceOf(token, trader))
	require.Equal(t, helpers.ExpandTo18Decimals(99), a.NativeBalance(trader))

	require.NoError(t, a.Approve(token, trader, x.Address(), bought))
	nativeQuote, err := x.GetTokenToNativeInputPrice(bought)
	require.NoError(t, err)
	nativeBought, err := x.TokenToNativeSwapInput(trader, bought, uint256.NewInt(1), deadline)
	require.NoError(t, err)
	require.Equal(t, nativeQuote, nativeBought)
	require.True(t, nativeBought.Lt(helpers.ExpandTo18Decimals(1)), "round trip must lose the fee")
	require.True(t, a.BalanceOf(token, trader).IsZero())
}

func TestExchange_Deadline(t *testing.T) {
	stateBus := bus.NewBus()
	x := &Exchange{address: factory, token: token, bus: stateBus}
	stateBus.SetClock(clock(100))

	_, err := x.AddLiquidity(wallet, new(uint256.Int), uint256.NewInt(1), 99, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrorExpired)
	_, _, err = x.RemoveLiquidity(wallet, uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(1), 99)
	require.ErrorIs(t, err, ErrorExpired)
}

type clock uint64

func (c clock) BlockTime() uint64 { return uint64(c) }

func TestExchanges_CommitLoad(t *testing.T) {
	e, x, _, _ := newTestExchange(t)

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024)
	require.NoError(t, err)
	require.NoError(t, e.Commit(mutableTree))
	_, _, err = mutableTree.SaveVersion()
	require.NoError(t, err)

	loaded := NewExchanges(bus.NewBus())
	require.NoError(t, loaded.Load(mutableTree))
	require.Equal(t, factory, loaded.Address())
	address, ok := loaded.GetExchange(token)
	require.True(t, ok)
	require.Equal(t, x.Address(), address)

	var state types.AppState
	loaded.Export(&state)
	require.Len(t, state.Exchanges, 1)
	require.Equal(t, token, state.Exchanges[0].Token)
}
