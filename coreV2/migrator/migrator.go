// Package migrator moves liquidity from legacy exchanges into pairs.
package migrator

import (
	"math"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/router"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/exchange"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrorExchangeNotExists        = exchange.ErrorExchangeNotExists
	ErrorInsufficientAssetAmount  = errors.New("INSUFFICIENT_ASSET_AMOUNT")
	ErrorInsufficientNativeAmount = errors.New("INSUFFICIENT_NATIVE_AMOUNT")
	ErrorZeroAmount               = errors.New("ZERO_AMOUNT")
)

var one = uint256.NewInt(1)

// Exchanges resolves the legacy exchange of a token.
type Exchanges interface {
	Exchange(token types.Address) *exchange.Exchange
}

type Migrator struct {
	address   types.Address
	exchanges Exchanges
	router    *router.Router
	bus       *bus.Bus
}

// New returns the migrator deployed at address. It re-deposits through the
// wrapped native pair of router.
func New(address types.Address, exchanges Exchanges, router *router.Router, bus *bus.Bus) *Migrator {
	return &Migrator{
		address:   address,
		exchanges: exchanges,
		router:    router,
		bus:       bus,
	}
}

func (m *Migrator) Address() types.Address {
	return m.address
}

// Result is what a migration withdrew from the legacy exchange and what the
// pair accepted.
type Result struct {
	WithdrawnToken  *uint256.Int
	WithdrawnNative *uint256.Int
	DepositedToken  *uint256.Int
	DepositedNative *uint256.Int
	Liquidity       *uint256.Int
}

// Migrate pulls amount legacy shares of token from sender, withdraws them
// from the exchange and deposits the proceeds into the pair of token and the
// wrapped native asset. The pair shares go to to and leftovers back to sender.
func (m *Migrator) Migrate(sender, token types.Address, amount, amountTokenMin, amountNativeMin *uint256.Int, to types.Address, deadline uint64) (*Result, error) {
	if amount.IsZero() {
		return nil, ErrorZeroAmount
	}
	legacy := m.exchanges.Exchange(token)
	if legacy == nil {
		return nil, errors.Wrapf(ErrorExchangeNotExists, "%s", token)
	}

	assets := m.bus.Assets()
	if err := assets.TransferFrom(legacy.Address(), m.address, sender, m.address, amount); err != nil {
		return nil, errors.Wrap(err, "pull legacy shares")
	}

	nativeAmount, tokenAmount, err := legacy.RemoveLiquidity(m.address, amount, one, one, math.MaxUint64)
	if err != nil {
		return nil, errors.Wrap(err, "remove legacy liquidity")
	}
	if tokenAmount.Lt(amountTokenMin) {
		return nil, ErrorInsufficientAssetAmount
	}
	if nativeAmount.Lt(amountNativeMin) {
		return nil, ErrorInsufficientNativeAmount
	}

	if err := assets.Approve(token, m.address, m.router.Address(), tokenAmount); err != nil {
		return nil, err
	}
	depositedToken, depositedNative, liquidity, err := m.router.AddLiquidityETH(m.address, token, tokenAmount, amountTokenMin, amountNativeMin, to, deadline, nativeAmount)
	if err != nil {
		return nil, err
	}

	if tokenAmount.Gt(depositedToken) {
		if err := assets.Approve(token, m.address, m.router.Address(), new(uint256.Int)); err != nil {
			return nil, err
		}
		if err := assets.Transfer(token, m.address, sender, new(uint256.Int).Sub(tokenAmount, depositedToken)); err != nil {
			return nil, err
		}
	} else if nativeAmount.Gt(depositedNative) {
		if err := assets.TransferNative(m.address, sender, new(uint256.Int).Sub(nativeAmount, depositedNative)); err != nil {
			return nil, err
		}
	}

	m.bus.AddEvent(&events.MigrateEvent{
		Token:        token,
		Sender:       sender,
		To:           to,
		TokenAmount:  depositedToken.Dec(),
		NativeAmount: depositedNative.Dec(),
		Liquidity:    liquidity.Dec(),
	})
	m.bus.Logger().Debug("liquidity migrated", "token", token.String(), "sender", sender.String(), "liquidity", liquidity.Dec())

	return &Result{
		WithdrawnToken:  tokenAmount,
		WithdrawnNative: nativeAmount,
		DepositedToken:  depositedToken,
		DepositedNative: depositedNative,
		Liquidity:       liquidity,
	}, nil
}
