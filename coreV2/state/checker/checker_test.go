package checker

import (
	"math/big"
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/types"
)

func TestChecker(t *testing.T) {
	c := NewChecker(bus.NewBus())
	asset := types.HexToAddress("Mx04bea23efb744dc93b4fda4c20bf4a21c6e195f1")

	c.AddAsset(asset, big.NewInt(100))
	c.AddAsset(asset, big.NewInt(-40))
	c.AddAssetSupply(asset, big.NewInt(60))
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}

	c.AddAsset(asset, big.NewInt(1))
	if err := c.Check(); err == nil {
		t.Fatal("expected invariants error")
	}

	c.Reset()
	c.AddAssetSupply(asset, big.NewInt(5))
	if err := c.Check(); err == nil {
		t.Fatal("expected invariants error on supply without balances")
	}
}
