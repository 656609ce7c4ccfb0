package router

import (
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// optimalAmounts creates the pair when it does not exist and picks the
// largest deposit not above the desired amounts that matches the current
// price of the pair.
func (r *Router) optimalAmounts(tokenA, tokenB types.Address, amountADesired, amountBDesired, amountAMin, amountBMin *uint256.Int) (*swap.Pair, *uint256.Int, *uint256.Int, error) {
	pair, err := r.factory.ReturnPair(tokenA, tokenB)
	if err != nil {
		return nil, nil, nil, err
	}

	reserve0, reserve1, _ := pair.Reserves()
	reserveA, reserveB := reserve0, reserve1
	if pair.Token0 != tokenA {
		reserveA, reserveB = reserve1, reserve0
	}

	if reserveA.IsZero() && reserveB.IsZero() {
		return pair, amountADesired, amountBDesired, nil
	}

	amountBOptimal, err := swap.Quote(amountADesired, reserveA, reserveB)
	if err != nil {
		return nil, nil, nil, err
	}
	if !amountBOptimal.Gt(amountBDesired) {
		if amountBOptimal.Lt(amountBMin) {
			return nil, nil, nil, ErrorInsufficientBAmount
		}
		return pair, amountADesired, amountBOptimal, nil
	}

	amountAOptimal, err := swap.Quote(amountBDesired, reserveB, reserveA)
	if err != nil {
		return nil, nil, nil, err
	}
	if amountAOptimal.Gt(amountADesired) {
		return nil, nil, nil, ErrorInsufficientAAmount
	}
	if amountAOptimal.Lt(amountAMin) {
		return nil, nil, nil, ErrorInsufficientAAmount
	}

	return pair, amountAOptimal, amountBDesired, nil
}

// AddLiquidity deposits tokenA and tokenB of sender into their pair and
// mints the liquidity shares to to. The router spends the allowances sender
// granted it.
func (r *Router) AddLiquidity(sender, tokenA, tokenB types.Address, amountADesired, amountBDesired, amountAMin, amountBMin *uint256.Int, to types.Address, deadline uint64) (amountA, amountB, liquidity *uint256.Int, err error) {
	if err := r.ensure(deadline); err != nil {
		return nil, nil, nil, err
	}

	pair, amountA, amountB, err := r.optimalAmounts(tokenA, tokenB, amountADesired, amountBDesired, amountAMin, amountBMin)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := r.assets.TransferFrom(tokenA, r.address, sender, pair.Address(), amountA); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "deposit %s", tokenA)
	}
	if err := r.assets.TransferFrom(tokenB, r.address, sender, pair.Address(), amountB); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "deposit %s", tokenB)
	}
	if liquidity, err = pair.Mint(r.address, to); err != nil {
		return nil, nil, nil, err
	}

	return amountA, amountB, liquidity, nil
}

// AddLiquidityETH deposits token and the attached native value into the pair
// of token and the wrapped native asset. Unused value goes back to sender.
func (r *Router) AddLiquidityETH(sender, token types.Address, amountTokenDesired, amountTokenMin, amountETHMin *uint256.Int, to types.Address, deadline uint64, value *uint256.Int) (amountToken, amountETH, liquidity *uint256.Int, err error) {
	if err := r.ensure(deadline); err != nil {
		return nil, nil, nil, err
	}

	pair, amountToken, amountETH, err := r.optimalAmounts(token, r.wrapped, amountTokenDesired, value, amountTokenMin, amountETHMin)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := r.receive(sender, value); err != nil {
		return nil, nil, nil, err
	}
	if err := r.assets.TransferFrom(token, r.address, sender, pair.Address(), amountToken); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "deposit %s", token)
	}
	if err := r.wrap(amountETH, pair.Address()); err != nil {
		return nil, nil, nil, err
	}
	if liquidity, err = pair.Mint(r.address, to); err != nil {
		return nil, nil, nil, err
	}
	if err := r.refund(sender, value, amountETH); err != nil {
		return nil, nil, nil, err
	}

	return amountToken, amountETH, liquidity, nil
}

// RemoveLiquidity burns liquidity shares of sender and sends both assets to to.
func (r *Router) RemoveLiquidity(sender, tokenA, tokenB types.Address, liquidity, amountAMin, amountBMin *uint256.Int, to types.Address, deadline uint64) (amountA, amountB *uint256.Int, err error) {
	if err := r.ensure(deadline); err != nil {
		return nil, nil, err
	}

	pair, err := r.pair(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if err := r.assets.TransferFrom(pair.Address(), r.address, sender, pair.Address(), liquidity); err != nil {
		return nil, nil, errors.Wrap(err, "send liquidity")
	}

	amount0, amount1, err := pair.Burn(r.address, to)
	if err != nil {
		return nil, nil, err
	}
	amountA, amountB = amount0, amount1
	if pair.Token0 != tokenA {
		amountA, amountB = amount1, amount0
	}

	if amountA.Lt(amountAMin) {
		return nil, nil, ErrorInsufficientAAmount
	}
	if amountB.Lt(amountBMin) {
		return nil, nil, ErrorInsufficientBAmount
	}

	return amountA, amountB, nil
}

// RemoveLiquidityETH burns liquidity shares of sender in the pair of token
// and the wrapped native asset and pays the native side out unwrapped.
func (r *Router) RemoveLiquidityETH(sender, token types.Address, liquidity, amountTokenMin, amountETHMin *uint256.Int, to types.Address, deadline uint64) (amountToken, amountETH *uint256.Int, err error) {
	amountToken, amountETH, err = r.RemoveLiquidity(sender, token, r.wrapped, liquidity, amountTokenMin, amountETHMin, r.address, deadline)
	if err != nil {
		return nil, nil, err
	}

	if err := r.assets.Transfer(token, r.address, to, amountToken); err != nil {
		return nil, nil, err
	}
	if err := r.unwrap(amountETH, to); err != nil {
		return nil, nil, err
	}

	return amountToken, amountETH, nil
}

// RemoveLiquidityETHSupportingFeeOnTransferTokens is RemoveLiquidityETH for
// tokens that burn part of every transfer. The whole token balance the router
// received is forwarded.
func (r *Router) RemoveLiquidityETHSupportingFeeOnTransferTokens(sender, token types.Address, liquidity, amountTokenMin, amountETHMin *uint256.Int, to types.Address, deadline uint64) (amountETH *uint256.Int, err error) {
	if err := r.supportingFeeOnTransfer(); err != nil {
		return nil, err
	}

	_, amountETH, err = r.RemoveLiquidity(sender, token, r.wrapped, liquidity, amountTokenMin, amountETHMin, r.address, deadline)
	if err != nil {
		return nil, err
	}

	if balance := r.assets.BalanceOf(token, r.address); !balance.IsZero() {
		if err := r.assets.Transfer(token, r.address, to, balance); err != nil {
			return nil, err
		}
	}
	if err := r.unwrap(amountETH, to); err != nil {
		return nil, err
	}

	return amountETH, nil
}
