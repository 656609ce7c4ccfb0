package helpers

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// ExpandTo18Decimals converts whole units to base units (multiplies input by 1e18)
func ExpandTo18Decimals(n uint64) *uint256.Int {
	p := uint256.NewInt(10)
	p.Exp(p, uint256.NewInt(18))
	return p.Mul(p, uint256.NewInt(n))
}

// StringToBigInt converts string to BigInt, panics on empty strings and errors
func StringToBigInt(s string) *big.Int {
	b, err := stringToBigInt(s)
	if err != nil {
		panic(err)
	}

	return b
}

func stringToBigInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("string is empty")
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		return nil, fmt.Errorf("cannot decode %s into big.Int", s)
	}

	return b, nil
}

// StringToAmount parses an unsigned decimal amount that fits 256 bits
func StringToAmount(s string) (*uint256.Int, error) {
	b, err := stringToBigInt(s)
	if err != nil {
		return nil, err
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("amount %s is negative", s)
	}

	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("amount %s overflows 256 bits", s)
	}

	return v, nil
}

// AmountString renders an amount in decimal, treating nil as zero
func AmountString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// IsValidBigInt verifies that string is a valid int
func IsValidBigInt(s string) bool {
	if s == "" {
		return false
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		return false
	}

	if b.Cmp(big.NewInt(0)) == -1 {
		return false
	}

	return true
}

// MinUint64 returns the smaller of a and b
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
