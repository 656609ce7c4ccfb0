package bus

import (
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
)

type Assets interface {
	Create(address types.Address, symbol string, decimals uint8, minter types.Address) error
	Exists(asset types.Address) bool
	BalanceOf(asset, owner types.Address) *uint256.Int
	TotalSupply(asset types.Address) *uint256.Int
	Transfer(asset, from, to types.Address, amount *uint256.Int) error
	TransferFrom(asset, spender, from, to types.Address, amount *uint256.Int) error
	Approve(asset, owner, spender types.Address, amount *uint256.Int) error
	Mint(asset, caller, to types.Address, amount *uint256.Int) error
	Burn(asset, caller, from types.Address, amount *uint256.Int) error

	NativeBalance(owner types.Address) *uint256.Int
	TransferNative(from, to types.Address, amount *uint256.Int) error
}
