package swap

import (
	"context"
	"math/rand"
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
)

func randomPairs(r *rand.Rand, tokens int) []*PairTrade {
	var pairs []*PairTrade
	for i := 1; i <= tokens; i++ {
		for j := i + 1; j <= tokens; j++ {
			if r.Intn(3) != 0 {
				continue
			}
			token0, token1 := types.BigToAddress(uint256.NewInt(uint64(i)).ToBig()), types.BigToAddress(uint256.NewInt(uint64(j)).ToBig())
			reserve0 := new(uint256.Int).Mul(uint256.NewInt(uint64(r.Int63n(1e6)+1)), uint256.NewInt(1e18))
			reserve1 := new(uint256.Int).Mul(uint256.NewInt(uint64(r.Int63n(1e6)+1)), uint256.NewInt(1e18))
			pairs = append(pairs, NewPair(PairAddress(types.ZeroAddress, PairKey{token0, token1}), NewTokenAmount(token0, reserve0), NewTokenAmount(token1, reserve1)))
		}
	}
	return pairs
}

func TestGetBestTrade_PrefersBetterRoute(t *testing.T) {
	a, b, c := tokenA, tokenB, tokenC
	e18 := uint256.NewInt(1e18)
	amount := func(n uint64) *uint256.Int { return new(uint256.Int).Mul(uint256.NewInt(n), e18) }

	// the direct pool is shallow, the two-hop route is deep
	pairs := []*PairTrade{
		NewPair(types.ZeroAddress, NewTokenAmount(a, amount(10)), NewTokenAmount(c, amount(10))),
		NewPair(types.ZeroAddress, NewTokenAmount(a, amount(100000)), NewTokenAmount(b, amount(100000))),
		NewPair(types.ZeroAddress, NewTokenAmount(b, amount(100000)), NewTokenAmount(c, amount(100000))),
	}

	trade := GetBestTradeExactIn(context.Background(), pairs, c, NewTokenAmount(a, amount(5)), 3)
	if trade == nil {
		t.Fatal("trade not found")
	}
	if len(trade.Route.Path) != 3 {
		t.Fatalf("want two hops, got path %v", trade.Route.Path)
	}

	direct := GetBestTradeExactIn(context.Background(), pairs, c, NewTokenAmount(a, amount(5)), 1)
	if direct == nil || len(direct.Route.Path) != 2 {
		t.Fatal("direct trade not found")
	}
	if !trade.OutputAmount.Amount.Gt(direct.OutputAmount.Amount) {
		t.Fatal("two-hop route must give more output")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if GetBestTradeExactIn(ctx, pairs, c, NewTokenAmount(a, amount(5)), 3) != nil {
		t.Fatal("cancelled search must return nothing")
	}
}

func BenchmarkGetBestTrade(b *testing.B) {
	pairs := randomPairs(rand.New(rand.NewSource(1)), 30)
	from := types.BigToAddress(uint256.NewInt(1).ToBig())
	to := types.BigToAddress(uint256.NewInt(2).ToBig())

	b.Run("ExactIn", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			GetBestTradeExactIn(context.Background(), pairs, to, NewTokenAmount(from, uint256.NewInt(1e18)), 3)
		}
	})
	b.Run("ExactOut", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			GetBestTradeExactOut(context.Background(), pairs, from, NewTokenAmount(to, uint256.NewInt(1e18)), 3)
		}
	})
}
