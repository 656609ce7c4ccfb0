package swap

import (
	"context"
	"errors"
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/state/assets"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/checker"
	"github.com/MinterTeam/minter-swap/coreV2/state/journal"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/helpers"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/holiman/uint256"
	db "github.com/tendermint/tm-db"
)

var (
	tokenA   = types.HexToAddress("Mx0000000000000000000000000000000000000a01")
	tokenB   = types.HexToAddress("Mx0000000000000000000000000000000000000b01")
	tokenC   = types.HexToAddress("Mx0000000000000000000000000000000000000c01")
	factory  = types.HexToAddress("Mx00000000000000000000000000000000000000fa")
	wallet   = types.HexToAddress("Mx00000000000000000000000000000000000000a1")
	other    = types.HexToAddress("Mx00000000000000000000000000000000000000b1")
	borrower = types.HexToAddress("Mx00000000000000000000000000000000000000c1")
)

type testClock struct {
	now uint64
}

func (c *testClock) BlockTime() uint64 {
	return c.now
}

type testEnv struct {
	swap    *Swap
	assets  *assets.Assets
	journal *journal.Journal
	checker *checker.Checker
	clock   *testClock
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()

	stateBus := bus.NewBus()
	env := &testEnv{
		journal: journal.New(),
		clock:   &testClock{now: 1000},
	}
	stateBus.SetJournal(env.journal)
	stateBus.SetClock(env.clock)
	env.checker = checker.NewChecker(stateBus)
	env.assets = assets.NewAssets(stateBus)
	env.swap = New(stateBus)

	if err := env.swap.Deploy(factory, wallet); err != nil {
		t.Fatal(err)
	}
	for i, token := range []types.Address{tokenA, tokenB, tokenC} {
		if err := env.assets.Create(token, string(rune('A'+i)), 18, wallet); err != nil {
			t.Fatal(err)
		}
		if err := env.assets.Mint(token, wallet, wallet, helpers.ExpandTo18Decimals(10000)); err != nil {
			t.Fatal(err)
		}
	}

	return env
}

func (env *testEnv) addLiquidity(t testing.TB, pair *Pair, amount0, amount1 *uint256.Int) *uint256.Int {
	t.Helper()

	if err := env.assets.Transfer(pair.Token0, wallet, pair.Address(), amount0); err != nil {
		t.Fatal(err)
	}
	if err := env.assets.Transfer(pair.Token1, wallet, pair.Address(), amount1); err != nil {
		t.Fatal(err)
	}
	liquidity, err := pair.Mint(wallet, wallet)
	if err != nil {
		t.Fatal(err)
	}
	return liquidity
}

func fromDecimal(t testing.TB, s string) *uint256.Int {
	t.Helper()

	v, err := uint256.FromDecimal(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSwap_CreatePair(t *testing.T) {
	env := newTestEnv(t)

	pair, err := env.swap.CreatePair(tokenB, tokenA)
	if err != nil {
		t.Fatal(err)
	}
	if pair.Token0 != tokenA || pair.Token1 != tokenB {
		t.Fatalf("tokens are not sorted: %s %s", pair.Token0, pair.Token1)
	}
	if want := PairAddress(factory, PairKey{tokenA, tokenB}); pair.Address() != want {
		t.Fatalf("want pair address %s, got %s", want, pair.Address())
	}

	for _, tokens := range [][2]types.Address{{tokenA, tokenB}, {tokenB, tokenA}} {
		if _, err := env.swap.CreatePair(tokens[0], tokens[1]); !errors.Is(err, ErrorPairExists) {
			t.Fatalf("want %v, got %v", ErrorPairExists, err)
		}
		address, ok := env.swap.GetPair(tokens[0], tokens[1])
		if !ok || address != pair.Address() {
			t.Fatalf("GetPair(%s, %s) = %s, %v", tokens[0], tokens[1], address, ok)
		}
	}

	if _, err := env.swap.CreatePair(tokenA, tokenA); !errors.Is(err, ErrorIdenticalAddresses) {
		t.Fatalf("want %v, got %v", ErrorIdenticalAddresses, err)
	}
	if _, err := env.swap.CreatePair(types.ZeroAddress, tokenA); !errors.Is(err, ErrorZeroAddress) {
		t.Fatalf("want %v, got %v", ErrorZeroAddress, err)
	}

	if env.swap.AllPairsLength() != 1 {
		t.Fatalf("want 1 pair, got %d", env.swap.AllPairsLength())
	}
	if address, ok := env.swap.AllPairs(0); !ok || address != pair.Address() {
		t.Fatal("AllPairs(0) mismatch")
	}
	if _, ok := env.swap.AllPairs(1); ok {
		t.Fatal("AllPairs(1) must not exist")
	}
	if !env.assets.Exists(pair.Address()) {
		t.Fatal("liquidity asset is not created")
	}

	same, err := env.swap.ReturnPair(tokenB, tokenA)
	if err != nil || same != pair {
		t.Fatalf("ReturnPair must return the existing pair: %v", err)
	}
}

func TestSwap_SetFeeTo(t *testing.T) {
	env := newTestEnv(t)

	if err := env.swap.SetFeeTo(other, other); !errors.Is(err, ErrorForbidden) {
		t.Fatalf("want %v, got %v", ErrorForbidden, err)
	}
	if err := env.swap.SetFeeTo(wallet, other); err != nil {
		t.Fatal(err)
	}
	if env.swap.FeeTo() != other {
		t.Fatal("feeTo is not set")
	}
	if err := env.swap.SetFeeToSetter(wallet, other); err != nil {
		t.Fatal(err)
	}
	if err := env.swap.SetFeeToSetter(wallet, wallet); !errors.Is(err, ErrorForbidden) {
		t.Fatalf("want %v, got %v", ErrorForbidden, err)
	}
	if err := env.swap.Deploy(factory, wallet); !errors.Is(err, ErrorFactoryExists) {
		t.Fatalf("want %v, got %v", ErrorFactoryExists, err)
	}
}

func TestPair_Mint(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}

	liquidity := env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(1), helpers.ExpandTo18Decimals(4))

	expected := new(uint256.Int).Sub(helpers.ExpandTo18Decimals(2), Bound)
	if !liquidity.Eq(expected) {
		t.Fatalf("want liquidity %s, got %s", expected.Dec(), liquidity.Dec())
	}
	if !pair.TotalSupply().Eq(helpers.ExpandTo18Decimals(2)) {
		t.Fatalf("total supply %s", pair.TotalSupply().Dec())
	}
	if !env.assets.BalanceOf(pair.Address(), types.ZeroAddress).Eq(Bound) {
		t.Fatal("minimum liquidity is not locked")
	}
	reserve0, reserve1, _ := pair.Reserves()
	if !reserve0.Eq(helpers.ExpandTo18Decimals(1)) || !reserve1.Eq(helpers.ExpandTo18Decimals(4)) {
		t.Fatalf("reserves %s %s", reserve0.Dec(), reserve1.Dec())
	}

	if _, err := pair.Mint(wallet, wallet); !errors.Is(err, ErrorInsufficientLiquidityMinted) {
		t.Fatalf("want %v, got %v", ErrorInsufficientLiquidityMinted, err)
	}

	if err := env.checker.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestPair_MintFirstDepositBelowMinimum(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}

	if err := env.assets.Transfer(pair.Token0, wallet, pair.Address(), uint256.NewInt(1000)); err != nil {
		t.Fatal(err)
	}
	if err := env.assets.Transfer(pair.Token1, wallet, pair.Address(), uint256.NewInt(1000)); err != nil {
		t.Fatal(err)
	}
	if _, err := pair.Mint(wallet, wallet); !errors.Is(err, ErrorInsufficientLiquidityMinted) {
		t.Fatalf("want %v, got %v", ErrorInsufficientLiquidityMinted, err)
	}
}

func TestPair_SwapToken0(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(5), helpers.ExpandTo18Decimals(10))

	swapAmount := helpers.ExpandTo18Decimals(1)
	expectedOutput := fromDecimal(t, "1662497915624478906")

	reserve0, reserve1, _ := pair.Reserves()
	amountOut, err := GetAmountOut(swapAmount, reserve0, reserve1)
	if err != nil {
		t.Fatal(err)
	}
	if !amountOut.Eq(expectedOutput) {
		t.Fatalf("want %s, got %s", expectedOutput.Dec(), amountOut.Dec())
	}

	if err := env.assets.Transfer(pair.Token0, wallet, pair.Address(), swapAmount); err != nil {
		t.Fatal(err)
	}

	tooMuch := new(uint256.Int).AddUint64(expectedOutput, 1)
	if err := pair.Swap(wallet, new(uint256.Int), tooMuch, wallet, nil); !errors.Is(err, ErrorK) {
		t.Fatalf("want %v, got %v", ErrorK, err)
	}
	if err := pair.Swap(wallet, new(uint256.Int), expectedOutput, wallet, nil); err != nil {
		t.Fatal(err)
	}

	reserve0, reserve1, _ = pair.Reserves()
	if !reserve0.Eq(helpers.ExpandTo18Decimals(6)) {
		t.Fatalf("reserve0 %s", reserve0.Dec())
	}
	if want := new(uint256.Int).Sub(helpers.ExpandTo18Decimals(10), expectedOutput); !reserve1.Eq(want) {
		t.Fatalf("want reserve1 %s, got %s", want.Dec(), reserve1.Dec())
	}
}

func TestPair_SwapErrors(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(5), helpers.ExpandTo18Decimals(10))

	zero := new(uint256.Int)
	one := uint256.NewInt(1)

	tests := []struct {
		name       string
		amount0Out *uint256.Int
		amount1Out *uint256.Int
		to         types.Address
		want       error
	}{
		{"zero output", zero, zero, wallet, ErrorInsufficientOutputAmount},
		{"output above reserve", helpers.ExpandTo18Decimals(5), zero, wallet, ErrorInsufficientLiquidity},
		{"to is token", one, zero, tokenA, ErrorInvalidTo},
		{"no input", one, zero, wallet, ErrorInsufficientInputAmount},
		{"callee missing", one, zero, borrower, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data []byte
			want := tt.want
			if tt.to == borrower {
				data = []byte{1}
				want = ErrorCalleeNotExists
			}
			if err := pair.Swap(wallet, tt.amount0Out, tt.amount1Out, tt.to, data); !errors.Is(err, want) {
				t.Fatalf("want %v, got %v", want, err)
			}
		})
	}
}

func TestPair_Burn(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	amount := helpers.ExpandTo18Decimals(3)
	liquidity := env.addLiquidity(t, pair, amount, amount)

	if err := env.assets.Transfer(pair.Address(), wallet, pair.Address(), liquidity); err != nil {
		t.Fatal(err)
	}
	amount0, amount1, err := pair.Burn(wallet, wallet)
	if err != nil {
		t.Fatal(err)
	}

	expected := new(uint256.Int).Sub(amount, Bound)
	if !amount0.Eq(expected) || !amount1.Eq(expected) {
		t.Fatalf("want %s, got %s %s", expected.Dec(), amount0.Dec(), amount1.Dec())
	}
	if !pair.TotalSupply().Eq(Bound) {
		t.Fatalf("total supply %s", pair.TotalSupply().Dec())
	}
	if !env.assets.BalanceOf(tokenA, pair.Address()).Eq(Bound) || !env.assets.BalanceOf(tokenB, pair.Address()).Eq(Bound) {
		t.Fatal("pair must keep the minimum liquidity backing")
	}
	if !env.assets.BalanceOf(tokenA, wallet).Eq(new(uint256.Int).Sub(helpers.ExpandTo18Decimals(10000), Bound)) {
		t.Fatalf("wallet balance %s", env.assets.BalanceOf(tokenA, wallet).Dec())
	}

	if _, _, err := pair.Burn(wallet, wallet); !errors.Is(err, ErrorInsufficientLiquidityBurned) {
		t.Fatalf("want %v, got %v", ErrorInsufficientLiquidityBurned, err)
	}
}

func reserveProduct(pair *Pair) *uint256.Int {
	reserve0, reserve1, _ := pair.Reserves()
	return new(uint256.Int).Mul(reserve0, reserve1)
}

func TestPair_ReserveProduct(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(5), helpers.ExpandTo18Decimals(10))

	beforeMint := reserveProduct(pair)
	liquidity := env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(1), helpers.ExpandTo18Decimals(2))

	k := reserveProduct(pair)
	for i, zeroForOne := range []bool{true, false, true, true, false} {
		tokenIn, amountIn := pair.Token1, helpers.ExpandTo18Decimals(1)
		if zeroForOne {
			tokenIn = pair.Token0
		}
		reserve0, reserve1, _ := pair.Reserves()
		reserveIn, reserveOut := reserve1, reserve0
		if zeroForOne {
			reserveIn, reserveOut = reserve0, reserve1
		}
		amountOut, err := GetAmountOut(amountIn, reserveIn, reserveOut)
		if err != nil {
			t.Fatal(err)
		}
		if err := env.assets.Transfer(tokenIn, wallet, pair.Address(), amountIn); err != nil {
			t.Fatal(err)
		}
		amount0Out, amount1Out := amountOut, new(uint256.Int)
		if zeroForOne {
			amount0Out, amount1Out = new(uint256.Int), amountOut
		}
		if err := pair.Swap(wallet, amount0Out, amount1Out, wallet, nil); err != nil {
			t.Fatalf("swap %d: %v", i, err)
		}

		next := reserveProduct(pair)
		if next.Lt(k) {
			t.Fatalf("swap %d: reserve product dropped from %s to %s", i, k.Dec(), next.Dec())
		}
		k = next
	}

	if err := env.assets.Transfer(pair.Address(), wallet, pair.Address(), liquidity); err != nil {
		t.Fatal(err)
	}
	if _, _, err := pair.Burn(wallet, wallet); err != nil {
		t.Fatal(err)
	}
	if afterBurn := reserveProduct(pair); afterBurn.Lt(beforeMint) {
		t.Fatalf("reserve product after burn %s is below %s before mint", afterBurn.Dec(), beforeMint.Dec())
	}
}

func TestPair_FeeTo(t *testing.T) {
	env := newTestEnv(t)
	if err := env.swap.SetFeeTo(wallet, other); err != nil {
		t.Fatal(err)
	}
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	amount := helpers.ExpandTo18Decimals(1000)
	env.addLiquidity(t, pair, amount, amount)

	swapAmount := helpers.ExpandTo18Decimals(1)
	expectedOutput := fromDecimal(t, "996006981039903216")
	if err := env.assets.Transfer(pair.Token1, wallet, pair.Address(), swapAmount); err != nil {
		t.Fatal(err)
	}
	if err := pair.Swap(wallet, expectedOutput, new(uint256.Int), wallet, nil); err != nil {
		t.Fatal(err)
	}

	liquidity := new(uint256.Int).Sub(amount, Bound)
	if err := env.assets.Transfer(pair.Address(), wallet, pair.Address(), liquidity); err != nil {
		t.Fatal(err)
	}
	if _, _, err := pair.Burn(wallet, wallet); err != nil {
		t.Fatal(err)
	}

	protocolFee := fromDecimal(t, "249750499251388")
	if got := env.assets.BalanceOf(pair.Address(), other); !got.Eq(protocolFee) {
		t.Fatalf("want fee %s, got %s", protocolFee.Dec(), got.Dec())
	}
	if want := new(uint256.Int).Add(Bound, protocolFee); !pair.TotalSupply().Eq(want) {
		t.Fatalf("want supply %s, got %s", want.Dec(), pair.TotalSupply().Dec())
	}
	if want := new(uint256.Int).Add(Bound, fromDecimal(t, "249501683697445")); !env.assets.BalanceOf(tokenA, pair.Address()).Eq(want) {
		t.Fatalf("want token0 %s, got %s", want.Dec(), env.assets.BalanceOf(tokenA, pair.Address()).Dec())
	}
	if want := new(uint256.Int).Add(Bound, fromDecimal(t, "250000187312969")); !env.assets.BalanceOf(tokenB, pair.Address()).Eq(want) {
		t.Fatalf("want token1 %s, got %s", want.Dec(), env.assets.BalanceOf(tokenB, pair.Address()).Dec())
	}
}

func TestPair_PriceCumulative(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	amount := helpers.ExpandTo18Decimals(3)
	env.addLiquidity(t, pair, amount, amount)

	_, _, timestamp := pair.Reserves()
	if timestamp != env.clock.now {
		t.Fatalf("want timestamp %d, got %d", env.clock.now, timestamp)
	}
	price0, price1 := pair.PriceCumulativeLast()
	if !price0.IsZero() || !price1.IsZero() {
		t.Fatal("first update must not accumulate")
	}

	env.clock.now += 10
	if err := pair.Sync(); err != nil {
		t.Fatal(err)
	}

	want := new(uint256.Int).Mul(types.Q112, uint256.NewInt(10))
	price0, price1 = pair.PriceCumulativeLast()
	if !price0.Eq(want) || !price1.Eq(want) {
		t.Fatalf("want %s, got %s %s", want.Dec(), price0.Dec(), price1.Dec())
	}

	if err := pair.Sync(); err != nil {
		t.Fatal(err)
	}
	price0, _ = pair.PriceCumulativeLast()
	if !price0.Eq(want) {
		t.Fatal("same block update must not accumulate")
	}
}

func TestPair_Skim(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(1), helpers.ExpandTo18Decimals(1))

	donation := uint256.NewInt(12345)
	if err := env.assets.Transfer(tokenA, wallet, pair.Address(), donation); err != nil {
		t.Fatal(err)
	}
	if err := pair.Skim(other); err != nil {
		t.Fatal(err)
	}
	if !env.assets.BalanceOf(tokenA, other).Eq(donation) {
		t.Fatalf("skimmed %s", env.assets.BalanceOf(tokenA, other).Dec())
	}
	reserve0, _, _ := pair.Reserves()
	if !env.assets.BalanceOf(tokenA, pair.Address()).Eq(reserve0) {
		t.Fatal("balance must equal reserve after skim")
	}
}

type flashBorrower struct {
	env   *testEnv
	pair  *Pair
	repay *uint256.Int
}

func (f *flashBorrower) SwapCall(sender types.Address, amount0, amount1 *uint256.Int, data []byte) error {
	return f.env.assets.Transfer(f.pair.Token0, borrower, f.pair.Address(), f.repay)
}

type reentrantCallee struct {
	pair *Pair
}

func (r *reentrantCallee) SwapCall(sender types.Address, amount0, amount1 *uint256.Int, data []byte) error {
	return r.pair.Swap(sender, amount0, amount1, borrower, nil)
}

func TestPair_FlashSwap(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(5), helpers.ExpandTo18Decimals(10))
	if err := env.assets.Transfer(tokenA, wallet, borrower, helpers.ExpandTo18Decimals(1)); err != nil {
		t.Fatal(err)
	}

	loan := helpers.ExpandTo18Decimals(1)
	zero := new(uint256.Int)

	env.swap.RegisterCallee(borrower, &flashBorrower{env: env, pair: pair, repay: loan})
	restore := env.journal.OpIndex()
	if err := pair.Swap(wallet, loan, zero, borrower, []byte("flash")); !errors.Is(err, ErrorK) {
		t.Fatalf("repaying without fee: want %v, got %v", ErrorK, err)
	}
	env.journal.Rollback(restore)

	env.swap.RegisterCallee(borrower, &flashBorrower{env: env, pair: pair, repay: fromDecimal(t, "1003009027081243732")})
	if err := pair.Swap(wallet, loan, zero, borrower, []byte("flash")); err != nil {
		t.Fatal(err)
	}

	env.swap.RegisterCallee(borrower, &reentrantCallee{pair: pair})
	if err := pair.Swap(wallet, uint256.NewInt(1), zero, borrower, []byte("again")); !errors.Is(err, ErrorReentrancy) {
		t.Fatalf("want %v, got %v", ErrorReentrancy, err)
	}
}

func TestPair_Rollback(t *testing.T) {
	env := newTestEnv(t)

	restore := env.journal.OpIndex()
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(1), helpers.ExpandTo18Decimals(1))

	env.journal.Rollback(restore)
	env.checker.Reset()

	if env.swap.Pair(tokenA, tokenB) != nil || env.swap.AllPairsLength() != 0 {
		t.Fatal("pair must be removed by rollback")
	}
	if !env.assets.BalanceOf(tokenA, wallet).Eq(helpers.ExpandTo18Decimals(10000)) {
		t.Fatalf("wallet balance %s", env.assets.BalanceOf(tokenA, wallet).Dec())
	}
	reserve0, reserve1, _ := pair.Reserves()
	if !reserve0.IsZero() || !reserve1.IsZero() {
		t.Fatal("reserves must be restored")
	}
}

func TestSwap_CommitLoad(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pair, helpers.ExpandTo18Decimals(1), helpers.ExpandTo18Decimals(2))

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.assets.Commit(mutableTree); err != nil {
		t.Fatal(err)
	}
	if err := env.swap.Commit(mutableTree); err != nil {
		t.Fatal(err)
	}
	if _, _, err := mutableTree.SaveVersion(); err != nil {
		t.Fatal(err)
	}

	stateBus := bus.NewBus()
	loadedAssets := assets.NewAssets(stateBus)
	loaded := New(stateBus)
	if err := loadedAssets.Load(mutableTree); err != nil {
		t.Fatal(err)
	}
	if err := loaded.Load(mutableTree); err != nil {
		t.Fatal(err)
	}

	if loaded.Address() != factory || loaded.FeeToSetter() != wallet {
		t.Fatal("factory is not restored")
	}
	restored := loaded.Pair(tokenB, tokenA)
	if restored == nil {
		t.Fatal("pair is not restored")
	}
	reserve0, reserve1, timestamp := restored.Reserves()
	wantReserve0, wantReserve1, wantTimestamp := pair.Reserves()
	if !reserve0.Eq(wantReserve0) || !reserve1.Eq(wantReserve1) || timestamp != wantTimestamp {
		t.Fatalf("reserves %s %s %d", reserve0.Dec(), reserve1.Dec(), timestamp)
	}
	if address, ok := loaded.AllPairs(0); !ok || address != pair.Address() {
		t.Fatal("pairs list is not restored")
	}
	if !restored.TotalSupply().Eq(pair.TotalSupply()) {
		t.Fatal("liquidity supply is not restored")
	}

	var state types.AppState
	loaded.Export(&state)
	if len(state.Pools) != 1 || state.Pools[0].Reserve0 != wantReserve0.Dec() {
		t.Fatalf("export %+v", state.Pools)
	}
}

func TestSwap_GetBestTrade(t *testing.T) {
	env := newTestEnv(t)

	pairAB, err := env.swap.CreatePair(tokenA, tokenB)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pairAB, helpers.ExpandTo18Decimals(100), helpers.ExpandTo18Decimals(200))
	pairBC, err := env.swap.CreatePair(tokenB, tokenC)
	if err != nil {
		t.Fatal(err)
	}
	env.addLiquidity(t, pairBC, helpers.ExpandTo18Decimals(200), helpers.ExpandTo18Decimals(100))

	amountIn := helpers.ExpandTo18Decimals(1)
	trade := env.swap.GetBestTradeExactIn(context.Background(), tokenA, tokenC, amountIn, 3)
	if trade == nil {
		t.Fatal("trade not found")
	}
	if len(trade.Route.Path) != 3 || trade.Route.Path[1] != tokenB {
		t.Fatalf("unexpected path %v", trade.Route.Path)
	}

	hop1, _ := GetAmountOut(amountIn, helpers.ExpandTo18Decimals(100), helpers.ExpandTo18Decimals(200))
	hop2, _ := GetAmountOut(hop1, helpers.ExpandTo18Decimals(200), helpers.ExpandTo18Decimals(100))
	if !trade.OutputAmount.Amount.Eq(hop2) {
		t.Fatalf("want %s, got %s", hop2.Dec(), trade.OutputAmount.Amount.Dec())
	}

	if trade := env.swap.GetBestTradeExactIn(context.Background(), tokenA, tokenC, amountIn, 1); trade != nil {
		t.Fatal("one hop must not reach tokenC")
	}

	exactOut := env.swap.GetBestTradeExactOut(context.Background(), tokenA, tokenC, hop2, 3)
	if exactOut == nil {
		t.Fatal("exact out trade not found")
	}
	if exactOut.InputAmount.Amount.Gt(amountIn) {
		t.Fatalf("input %s exceeds %s", exactOut.InputAmount.Amount.Dec(), amountIn.Dec())
	}
}
