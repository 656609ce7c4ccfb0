package bus

import (
	"math/big"

	"github.com/MinterTeam/minter-swap/coreV2/types"
)

type Checker interface {
	AddAsset(types.Address, *big.Int, ...string)
	AddAssetSupply(types.Address, *big.Int)
}
