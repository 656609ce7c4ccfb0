package router

import (
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var zero = new(uint256.Int)

// hopTo returns where the output of hop i of path goes.
func (r *Router) hopTo(path []types.Address, i int, to types.Address) (types.Address, error) {
	if i >= len(path)-2 {
		return to, nil
	}
	next, err := r.pair(path[i+1], path[i+2])
	if err != nil {
		return types.Address{}, err
	}
	return next.Address(), nil
}

func outputs(pair *swap.Pair, input types.Address, amountOut *uint256.Int) (amount0Out, amount1Out *uint256.Int) {
	if pair.Token0 == input {
		return zero, amountOut
	}
	return amountOut, zero
}

// swap runs every hop of path. The first pair must already hold amounts[0].
func (r *Router) swap(amounts []*uint256.Int, path []types.Address, to types.Address) error {
	for i := 0; i < len(path)-1; i++ {
		pair, err := r.pair(path[i], path[i+1])
		if err != nil {
			return err
		}
		recipient, err := r.hopTo(path, i, to)
		if err != nil {
			return err
		}
		amount0Out, amount1Out := outputs(pair, path[i], amounts[i+1])
		if err := pair.Swap(r.address, amount0Out, amount1Out, recipient, nil); err != nil {
			return errors.Wrapf(err, "hop %d", i)
		}
	}

	return nil
}

// swapSupportingFeeOnTransfer runs every hop of path, taking as input what
// each pair actually received over its reserve.
func (r *Router) swapSupportingFeeOnTransfer(path []types.Address, to types.Address) error {
	for i := 0; i < len(path)-1; i++ {
		pair, err := r.pair(path[i], path[i+1])
		if err != nil {
			return err
		}

		reserve0, reserve1, _ := pair.Reserves()
		reserveInput, reserveOutput := reserve0, reserve1
		if pair.Token0 != path[i] {
			reserveInput, reserveOutput = reserve1, reserve0
		}
		amountInput, err := math.Sub(r.assets.BalanceOf(path[i], pair.Address()), reserveInput)
		if err != nil {
			return err
		}
		amountOutput, err := swap.GetAmountOut(amountInput, reserveInput, reserveOutput)
		if err != nil {
			return errors.Wrapf(err, "hop %d", i)
		}

		recipient, err := r.hopTo(path, i, to)
		if err != nil {
			return err
		}
		amount0Out, amount1Out := outputs(pair, path[i], amountOutput)
		if err := pair.Swap(r.address, amount0Out, amount1Out, recipient, nil); err != nil {
			return errors.Wrapf(err, "hop %d", i)
		}
	}

	return nil
}

func (r *Router) firstPair(path []types.Address) (types.Address, error) {
	pair, err := r.pair(path[0], path[1])
	if err != nil {
		return types.Address{}, err
	}
	return pair.Address(), nil
}

// SwapExactTokensForTokens sells exactly amountIn of path[0] for at least
// amountOutMin of the last token of path.
func (r *Router) SwapExactTokensForTokens(sender types.Address, amountIn, amountOutMin *uint256.Int, path []types.Address, to types.Address, deadline uint64) ([]*uint256.Int, error) {
	if err := r.ensure(deadline); err != nil {
		return nil, err
	}

	amounts, err := r.GetAmountsOut(amountIn, path)
	if err != nil {
		return nil, err
	}
	if amounts[len(amounts)-1].Lt(amountOutMin) {
		return nil, ErrorInsufficientOutputAmount
	}

	first, err := r.firstPair(path)
	if err != nil {
		return nil, err
	}
	if err := r.assets.TransferFrom(path[0], r.address, sender, first, amounts[0]); err != nil {
		return nil, err
	}
	if err := r.swap(amounts, path, to); err != nil {
		return nil, err
	}

	return amounts, nil
}

// SwapTokensForExactTokens buys exactly amountOut of the last token of path
// for at most amountInMax of path[0].
func (r *Router) SwapTokensForExactTokens(sender types.Address, amountOut, amountInMax *uint256.Int, path []types.Address, to types.Address, deadline uint64) ([]*uint256.Int, error) {
	if err := r.ensure(deadline); err != nil {
		return nil, err
	}

	amounts, err := r.GetAmountsIn(amountOut, path)
	if err != nil {
		return nil, err
	}
	if amounts[0].Gt(amountInMax) {
		return nil, ErrorExcessiveInputAmount
	}

	first, err := r.firstPair(path)
	if err != nil {
		return nil, err
	}
	if err := r.assets.TransferFrom(path[0], r.address, sender, first, amounts[0]); err != nil {
		return nil, err
	}
	if err := r.swap(amounts, path, to); err != nil {
		return nil, err
	}

	return amounts, nil
}

// SwapExactETHForTokens sells the whole attached native value.
func (r *Router) SwapExactETHForTokens(sender types.Address, amountOutMin *uint256.Int, path []types.Address, to types.Address, deadline uint64, value *uint256.Int) ([]*uint256.Int, error) {
	if err := r.ensure(deadline); err != nil {
		return nil, err
	}
	if len(path) < 2 || path[0] != r.wrapped {
		return nil, ErrorInvalidPath
	}

	amounts, err := r.GetAmountsOut(value, path)
	if err != nil {
		return nil, err
	}
	if amounts[len(amounts)-1].Lt(amountOutMin) {
		return nil, ErrorInsufficientOutputAmount
	}

	first, err := r.firstPair(path)
	if err != nil {
		return nil, err
	}
	if err := r.receive(sender, value); err != nil {
		return nil, err
	}
	if err := r.wrap(amounts[0], first); err != nil {
		return nil, err
	}
	if err := r.swap(amounts, path, to); err != nil {
		return nil, err
	}

	return amounts, nil
}

// SwapTokensForExactETH buys exactly amountOut of native currency.
func (r *Router) SwapTokensForExactETH(sender types.Address, amountOut, amountInMax *uint256.Int, path []types.Address, to types.Address, deadline uint64) ([]*uint256.Int, error) {
	if err := r.ensure(deadline); err != nil {
		return nil, err
	}
	if len(path) < 2 || path[len(path)-1] != r.wrapped {
		return nil, ErrorInvalidPath
	}

	amounts, err := r.GetAmountsIn(amountOut, path)
	if err != nil {
		return nil, err
	}
	if amounts[0].Gt(amountInMax) {
		return nil, ErrorExcessiveInputAmount
	}

	first, err := r.firstPair(path)
	if err != nil {
		return nil, err
	}
	if err := r.assets.TransferFrom(path[0], r.address, sender, first, amounts[0]); err != nil {
		return nil, err
	}
	if err := r.swap(amounts, path, r.address); err != nil {
		return nil, err
	}
	if err := r.unwrap(amounts[len(amounts)-1], to); err != nil {
		return nil, err
	}

	return amounts, nil
}

// SwapExactTokensForETH sells exactly amountIn of path[0] for native currency.
func (r *Router) SwapExactTokensForETH(sender types.Address, amountIn, amountOutMin *uint256.Int, path []types.Address, to types.Address, deadline uint64) ([]*uint256.Int, error) {
	if err := r.ensure(deadline); err != nil {
		return nil, err
	}
	if len(path) < 2 || path[len(path)-1] != r.wrapped {
		return nil, ErrorInvalidPath
	}

	amounts, err := r.GetAmountsOut(amountIn, path)
	if err != nil {
		return nil, err
	}
	if amounts[len(amounts)-1].Lt(amountOutMin) {
		return nil, ErrorInsufficientOutputAmount
	}

	first, err := r.firstPair(path)
	if err != nil {
		return nil, err
	}
	if err := r.assets.TransferFrom(path[0], r.address, sender, first, amounts[0]); err != nil {
		return nil, err
	}
	if err := r.swap(amounts, path, r.address); err != nil {
		return nil, err
	}
	if err := r.unwrap(amounts[len(amounts)-1], to); err != nil {
		return nil, err
	}

	return amounts, nil
}

// SwapETHForExactTokens buys exactly amountOut with the attached native value
// and refunds the rest of it.
func (r *Router) SwapETHForExactTokens(sender types.Address, amountOut *uint256.Int, path []types.Address, to types.Address, deadline uint64, value *uint256.Int) ([]*uint256.Int, error) {
	if err := r.ensure(deadline); err != nil {
		return nil, err
	}
	if len(path) < 2 || path[0] != r.wrapped {
		return nil, ErrorInvalidPath
	}

	amounts, err := r.GetAmountsIn(amountOut, path)
	if err != nil {
		return nil, err
	}
	if amounts[0].Gt(value) {
		return nil, ErrorExcessiveInputAmount
	}

	first, err := r.firstPair(path)
	if err != nil {
		return nil, err
	}
	if err := r.receive(sender, value); err != nil {
		return nil, err
	}
	if err := r.wrap(amounts[0], first); err != nil {
		return nil, err
	}
	if err := r.swap(amounts, path, to); err != nil {
		return nil, err
	}
	if err := r.refund(sender, value, amounts[0]); err != nil {
		return nil, err
	}

	return amounts, nil
}

// received returns how much of token to gained relative to before.
func (r *Router) received(token, to types.Address, before *uint256.Int) (*uint256.Int, error) {
	after := r.assets.BalanceOf(token, to)
	if after.Lt(before) {
		return nil, ErrorInsufficientOutputAmount
	}
	return new(uint256.Int).Sub(after, before), nil
}

// SwapExactTokensForTokensSupportingFeeOnTransferTokens sells amountIn of
// path[0] and checks what to actually received.
func (r *Router) SwapExactTokensForTokensSupportingFeeOnTransferTokens(sender types.Address, amountIn, amountOutMin *uint256.Int, path []types.Address, to types.Address, deadline uint64) error {
	if err := r.supportingFeeOnTransfer(); err != nil {
		return err
	}
	if err := r.ensure(deadline); err != nil {
		return err
	}
	if len(path) < 2 {
		return ErrorInvalidPath
	}

	first, err := r.firstPair(path)
	if err != nil {
		return err
	}
	if err := r.assets.TransferFrom(path[0], r.address, sender, first, amountIn); err != nil {
		return err
	}

	output := path[len(path)-1]
	before := r.assets.BalanceOf(output, to)
	if err := r.swapSupportingFeeOnTransfer(path, to); err != nil {
		return err
	}
	amountOut, err := r.received(output, to, before)
	if err != nil {
		return err
	}
	if amountOut.Lt(amountOutMin) {
		return ErrorInsufficientOutputAmount
	}

	return nil
}

// SwapExactETHForTokensSupportingFeeOnTransferTokens sells the attached
// native value and checks what to actually received.
func (r *Router) SwapExactETHForTokensSupportingFeeOnTransferTokens(sender types.Address, amountOutMin *uint256.Int, path []types.Address, to types.Address, deadline uint64, value *uint256.Int) error {
	if err := r.supportingFeeOnTransfer(); err != nil {
		return err
	}
	if err := r.ensure(deadline); err != nil {
		return err
	}
	if len(path) < 2 || path[0] != r.wrapped {
		return ErrorInvalidPath
	}

	first, err := r.firstPair(path)
	if err != nil {
		return err
	}
	if err := r.receive(sender, value); err != nil {
		return err
	}
	if err := r.wrap(value, first); err != nil {
		return err
	}

	output := path[len(path)-1]
	before := r.assets.BalanceOf(output, to)
	if err := r.swapSupportingFeeOnTransfer(path, to); err != nil {
		return err
	}
	amountOut, err := r.received(output, to, before)
	if err != nil {
		return err
	}
	if amountOut.Lt(amountOutMin) {
		return ErrorInsufficientOutputAmount
	}

	return nil
}

// SwapExactTokensForETHSupportingFeeOnTransferTokens sells amountIn of
// path[0] for native currency, paying out what the router actually received.
func (r *Router) SwapExactTokensForETHSupportingFeeOnTransferTokens(sender types.Address, amountIn, amountOutMin *uint256.Int, path []types.Address, to types.Address, deadline uint64) error {
	if err := r.supportingFeeOnTransfer(); err != nil {
		return err
	}
	if err := r.ensure(deadline); err != nil {
		return err
	}
	if len(path) < 2 || path[len(path)-1] != r.wrapped {
		return ErrorInvalidPath
	}

	first, err := r.firstPair(path)
	if err != nil {
		return err
	}
	if err := r.assets.TransferFrom(path[0], r.address, sender, first, amountIn); err != nil {
		return err
	}
	if err := r.swapSupportingFeeOnTransfer(path, r.address); err != nil {
		return err
	}

	amountOut := r.assets.BalanceOf(r.wrapped, r.address)
	if amountOut.Lt(amountOutMin) {
		return ErrorInsufficientOutputAmount
	}

	return r.unwrap(amountOut, to)
}
