package types

import "github.com/holiman/uint256"

const (
	// MinimumLiquidity is locked forever on the first mint of every pair.
	MinimumLiquidity = 1000

	// FeeNumerator / FeeDenominator is the 0.3% trading fee.
	FeeNumerator   = 3
	FeeDenominator = 1000

	// DefaultDecimals is used for every asset created without explicit decimals.
	DefaultDecimals = 18
)

// MaxUint256 is used as an infinite allowance.
var MaxUint256 = new(uint256.Int).SetAllOne()

// MaxUint112 bounds pair reserves so that fee-adjusted products fit in 256 bits.
var MaxUint112 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 112), uint256.NewInt(1))

// Q112 is the fixed point base of price accumulators.
var Q112 = new(uint256.Int).Lsh(uint256.NewInt(1), 112)

// Precision is the fixed point base of reward-per-token accounting.
var Precision = uint256.NewInt(1e18)
