// Package math holds the checked fixed-width arithmetic used by every ledger
// component. Results are fresh values; arguments are never modified.
package math

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrorOverflow       = errors.New("OVERFLOW")
	ErrorUnderflow      = errors.New("UNDERFLOW")
	ErrorDivisionByZero = errors.New("DIVISION_BY_ZERO")
)

func Zero() *uint256.Int { return new(uint256.Int) }

func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrorOverflow
	}
	return z, nil
}

func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrorUnderflow
	}
	return z, nil
}

func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrorOverflow
	}
	return z, nil
}

func Div(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrorDivisionByZero
	}
	return new(uint256.Int).Div(a, b), nil
}

// MulDiv returns a*b/c, failing when a*b does not fit 256 bits.
func MulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	p, err := Mul(a, b)
	if err != nil {
		return nil, err
	}
	return Div(p, c)
}

// Sqrt is the floor square root.
func Sqrt(a *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(a)
}

func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// WrappingAdd adds modulo 2^256. Used only for oracle accumulators.
func WrappingAdd(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(a, b)
}

func Clone(a *uint256.Int) *uint256.Int {
	if a == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(a)
}
