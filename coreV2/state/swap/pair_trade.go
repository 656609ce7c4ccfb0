package swap

import (
	"errors"

	"github.com/MinterTeam/minter-swap/coreV2/types"
)

var ErrInsufficientReserve = errors.New("insufficient reserve")

// PairTrade is a detached reserve snapshot of a pair used by the path search.
type PairTrade struct {
	Address types.Address
	Token0  TokenAmount
	Token1  TokenAmount
}

func NewPair(address types.Address, tokenAmountA TokenAmount, tokenAmountB TokenAmount) *PairTrade {
	return &PairTrade{
		Address: address,
		Token0:  tokenAmountA,
		Token1:  tokenAmountB,
	}
}

// Snapshot captures the current reserves of the pair.
func (p *Pair) Snapshot() *PairTrade {
	reserve0, reserve1, _ := p.Reserves()
	return NewPair(p.address, NewTokenAmount(p.Token0, reserve0), NewTokenAmount(p.Token1, reserve1))
}

func (p PairTrade) involves(token types.Address) bool {
	return p.Token0.Token == token || p.Token1.Token == token
}

func (p PairTrade) other(token types.Address) types.Address {
	if p.Token0.Token == token {
		return p.Token1.Token
	}
	return p.Token0.Token
}

// GetOutputAmount returns the output of selling inputAmount and the pair state
// after the trade.
func (p PairTrade) GetOutputAmount(inputAmount TokenAmount) (TokenAmount, *PairTrade, error) {
	if p.Token0.Amount.IsZero() || p.Token1.Amount.IsZero() {
		return TokenAmount{}, nil, ErrInsufficientReserve
	}

	inputReserve := p.getReserveOf(inputAmount.Token)
	outputReserve := p.Token0
	if p.Token0.Token == inputAmount.Token {
		outputReserve = p.Token1
	}

	amount, err := GetAmountOut(inputAmount.Amount, inputReserve.Amount, outputReserve.Amount)
	if err != nil {
		return TokenAmount{}, nil, err
	}
	outputAmount := NewTokenAmount(outputReserve.Token, amount)

	return outputAmount, NewPair(p.Address, inputReserve.add(inputAmount), outputReserve.sub(outputAmount)), nil
}

// GetInputAmount returns the input needed to buy outputAmount and the pair
// state after the trade.
func (p PairTrade) GetInputAmount(outputAmount TokenAmount) (TokenAmount, *PairTrade, error) {
	outputReserve := p.getReserveOf(outputAmount.Token)
	if p.Token0.Amount.IsZero() || p.Token1.Amount.IsZero() || !outputAmount.Amount.Lt(outputReserve.Amount) {
		return TokenAmount{}, nil, ErrInsufficientReserve
	}

	inputReserve := p.Token0
	if p.Token0.Token == outputAmount.Token {
		inputReserve = p.Token1
	}

	amount, err := GetAmountIn(outputAmount.Amount, inputReserve.Amount, outputReserve.Amount)
	if err != nil {
		return TokenAmount{}, nil, err
	}
	inputAmount := NewTokenAmount(inputReserve.Token, amount)

	return inputAmount, NewPair(p.Address, inputReserve.add(inputAmount), outputReserve.sub(outputAmount)), nil
}

func (p PairTrade) getReserveOf(token types.Address) TokenAmount {
	if p.Token0.Token == token {
		return p.Token0
	}

	return p.Token1
}
