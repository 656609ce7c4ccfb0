package swap

import (
	"context"

	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
)

// snapshots returns reserve snapshots of every pair with liquidity.
func (s *Swap) snapshots() []*PairTrade {
	var pairs []*PairTrade
	for _, pair := range s.Pairs() {
		snapshot := pair.Snapshot()
		if snapshot.Token0.Amount.IsZero() || snapshot.Token1.Amount.IsZero() {
			continue
		}
		pairs = append(pairs, snapshot)
	}
	return pairs
}

func (s *Swap) GetBestTradeExactIn(ctx context.Context, from, to types.Address, amount *uint256.Int, maxHops int) *Trade {
	return GetBestTradeExactIn(ctx, s.snapshots(), to, NewTokenAmount(from, amount), maxHops)
}

func (s *Swap) GetBestTradeExactOut(ctx context.Context, from, to types.Address, amount *uint256.Int, maxHops int) *Trade {
	return GetBestTradeExactOut(ctx, s.snapshots(), from, NewTokenAmount(to, amount), maxHops)
}
