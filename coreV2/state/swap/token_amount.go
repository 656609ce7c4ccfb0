package swap

import (
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
)

type TokenAmount struct {
	Token  types.Address
	Amount *uint256.Int
}

func NewTokenAmount(token types.Address, amount *uint256.Int) TokenAmount {
	return TokenAmount{Token: token, Amount: amount}
}

func (ta TokenAmount) GetAmount() *uint256.Int {
	return ta.Amount
}

func (ta TokenAmount) GetCurrency() types.Address {
	return ta.Token
}

func (ta TokenAmount) add(other TokenAmount) TokenAmount {
	return TokenAmount{
		Token:  ta.Token,
		Amount: new(uint256.Int).Add(ta.Amount, other.Amount),
	}
}

func (ta TokenAmount) sub(other TokenAmount) TokenAmount {
	return TokenAmount{
		Token:  ta.Token,
		Amount: new(uint256.Int).Sub(ta.Amount, other.Amount),
	}
}
