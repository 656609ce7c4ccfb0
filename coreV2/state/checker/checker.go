package checker

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/types"
)

// Checker verifies that the balance deltas of every asset touched by a call
// add up to its supply delta.
type Checker struct {
	delta       map[types.Address]*big.Int
	supplyDelta map[types.Address]*big.Int

	lock sync.RWMutex
}

func NewChecker(bus *bus.Bus) *Checker {
	checker := &Checker{
		delta:       map[types.Address]*big.Int{},
		supplyDelta: map[types.Address]*big.Int{},
	}
	bus.SetChecker(checker)

	return checker
}

func (c *Checker) AddAsset(asset types.Address, value *big.Int, msg ...string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cValue, exists := c.delta[asset]

	if !exists {
		cValue = big.NewInt(0)
		c.delta[asset] = cValue
	}

	cValue.Add(cValue, value)
}

func (c *Checker) AddAssetSupply(asset types.Address, value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cValue, exists := c.supplyDelta[asset]

	if !exists {
		cValue = big.NewInt(0)
		c.supplyDelta[asset] = cValue
	}

	cValue.Add(cValue, value)
}

// Reset resets checker asset data
func (c *Checker) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.delta = map[types.Address]*big.Int{}
	c.supplyDelta = map[types.Address]*big.Int{}
}

func (c *Checker) Check() error {
	c.lock.RLock()
	defer c.lock.RUnlock()

	for asset, delta := range c.delta {
		supply := c.supplyDelta[asset]
		if supply == nil {
			supply = big.NewInt(0)
		}

		if delta.Cmp(supply) != 0 {
			return fmt.Errorf("invariants error on asset %s: %s", asset.String(), big.NewInt(0).Sub(supply, delta).String())
		}
	}

	for asset, supply := range c.supplyDelta {
		if _, ok := c.delta[asset]; !ok && supply.Sign() != 0 {
			return fmt.Errorf("invariants error on asset %s: supply changed by %s without balances", asset.String(), supply.String())
		}
	}

	return nil
}
