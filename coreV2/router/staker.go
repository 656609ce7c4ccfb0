package router

import (
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/staking"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var ErrorNoDistributor = errors.New("NO_DISTRIBUTOR")

// Distributors resolves the rewards distributor of a staking token.
type Distributors interface {
	Distributor(stakingToken types.Address) *staking.Distributor
}

// LiquidityStaker is a router that keeps the liquidity shares it mints and
// stakes them into the distributor of the pair on behalf of the caller.
type LiquidityStaker struct {
	*Router
	distributors Distributors
}

func NewLiquidityStaker(address types.Address, factory Factory, wrapped types.Address, assets Assets, clock bus.Clock, distributors Distributors) *LiquidityStaker {
	return &LiquidityStaker{
		Router:       New(address, factory, wrapped, assets, clock),
		distributors: distributors,
	}
}

func (s *LiquidityStaker) stake(account, stakingToken types.Address, liquidity *uint256.Int) error {
	distributor := s.distributors.Distributor(stakingToken)
	if distributor == nil {
		return errors.Wrapf(ErrorNoDistributor, "%s", stakingToken)
	}
	if err := s.assets.Approve(stakingToken, s.address, distributor.Address(), liquidity); err != nil {
		return err
	}
	return distributor.StakeFor(s.address, account, liquidity)
}

// AddLiquidityAndStake adds liquidity like AddLiquidity and stakes the minted
// shares for sender.
func (s *LiquidityStaker) AddLiquidityAndStake(sender, tokenA, tokenB types.Address, amountADesired, amountBDesired, amountAMin, amountBMin *uint256.Int, deadline uint64) (amountA, amountB, liquidity *uint256.Int, err error) {
	amountA, amountB, liquidity, err = s.AddLiquidity(sender, tokenA, tokenB, amountADesired, amountBDesired, amountAMin, amountBMin, s.address, deadline)
	if err != nil {
		return nil, nil, nil, err
	}

	pair, err := s.pair(tokenA, tokenB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := s.stake(sender, pair.Address(), liquidity); err != nil {
		return nil, nil, nil, err
	}

	return amountA, amountB, liquidity, nil
}

// AddLiquidityETHAndStake adds liquidity like AddLiquidityETH and stakes the
// minted shares for sender.
func (s *LiquidityStaker) AddLiquidityETHAndStake(sender, token types.Address, amountTokenDesired, amountTokenMin, amountETHMin *uint256.Int, deadline uint64, value *uint256.Int) (amountToken, amountETH, liquidity *uint256.Int, err error) {
	amountToken, amountETH, liquidity, err = s.AddLiquidityETH(sender, token, amountTokenDesired, amountTokenMin, amountETHMin, s.address, deadline, value)
	if err != nil {
		return nil, nil, nil, err
	}

	pair, err := s.pair(token, s.wrapped)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := s.stake(sender, pair.Address(), liquidity); err != nil {
		return nil, nil, nil, err
	}

	return amountToken, amountETH, liquidity, nil
}
