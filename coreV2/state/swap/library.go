package swap

import (
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/holiman/uint256"
)

var (
	feeMultiplier = uint256.NewInt(types.FeeDenominator - types.FeeNumerator)
	feeBase       = uint256.NewInt(types.FeeDenominator)
)

// Quote returns the amount of B equivalent to amountA at the current reserves.
func Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	if amountA.IsZero() {
		return nil, ErrorInsufficientAmount
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrorInsufficientLiquidity
	}
	return math.MulDiv(amountA, reserveB, reserveA)
}

// GetAmountOut returns the maximum output for amountIn after the 0.3% fee.
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrorInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrorInsufficientLiquidity
	}

	amountInWithFee, err := math.Mul(amountIn, feeMultiplier)
	if err != nil {
		return nil, err
	}
	numerator, err := math.Mul(amountInWithFee, reserveOut)
	if err != nil {
		return nil, err
	}
	denominator, err := math.Mul(reserveIn, feeBase)
	if err != nil {
		return nil, err
	}
	if denominator, err = math.Add(denominator, amountInWithFee); err != nil {
		return nil, err
	}

	return math.Div(numerator, denominator)
}

// GetAmountIn returns the minimum input needed to receive amountOut.
func GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return nil, ErrorInsufficientOutputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() || !amountOut.Lt(reserveOut) {
		return nil, ErrorInsufficientLiquidity
	}

	numerator, err := math.Mul(reserveIn, amountOut)
	if err != nil {
		return nil, err
	}
	if numerator, err = math.Mul(numerator, feeBase); err != nil {
		return nil, err
	}
	denominator, err := math.Mul(new(uint256.Int).Sub(reserveOut, amountOut), feeMultiplier)
	if err != nil {
		return nil, err
	}

	amountIn, err := math.Div(numerator, denominator)
	if err != nil {
		return nil, err
	}
	return math.Add(amountIn, uint256.NewInt(1))
}
