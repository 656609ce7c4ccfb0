// Package router performs multi-step liquidity and swap operations against
// the pair factory. A router keeps no state of its own besides the factory and
// the wrapped native asset it routes through.
package router

import (
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrorExpired                  = errors.New("EXPIRED")
	ErrorInsufficientAAmount      = errors.New("INSUFFICIENT_A_AMOUNT")
	ErrorInsufficientBAmount      = errors.New("INSUFFICIENT_B_AMOUNT")
	ErrorExcessiveInputAmount     = errors.New("EXCESSIVE_INPUT_AMOUNT")
	ErrorInvalidPath              = errors.New("INVALID_PATH")
	ErrorUnsupported              = errors.New("UNSUPPORTED")
	ErrorInsufficientOutputAmount = swap.ErrorInsufficientOutputAmount
	ErrorInsufficientLiquidity    = swap.ErrorInsufficientLiquidity
	ErrorInsufficientAmount       = swap.ErrorInsufficientAmount
	ErrorInsufficientInputAmount  = swap.ErrorInsufficientInputAmount
	ErrorPairNotExists            = swap.ErrorNotExist
)

// Assets is the ledger as seen by a router: token operations plus wrapping of
// the native currency.
type Assets interface {
	bus.Assets
	Deposit(asset, account types.Address, amount *uint256.Int) error
	Withdraw(asset, account types.Address, amount *uint256.Int) error
}

// Factory is the pair registry a router trades against.
type Factory interface {
	Pair(tokenA, tokenB types.Address) *swap.Pair
	ReturnPair(tokenA, tokenB types.Address) (*swap.Pair, error)
}

type Router struct {
	address types.Address
	factory Factory
	wrapped types.Address
	assets  Assets
	clock   bus.Clock
	legacy  bool
}

// New returns the reference router deployed at address.
func New(address types.Address, factory Factory, wrapped types.Address, assets Assets, clock bus.Clock) *Router {
	return &Router{
		address: address,
		factory: factory,
		wrapped: wrapped,
		assets:  assets,
		clock:   clock,
	}
}

// NewLegacy returns the first router revision. It has no support for tokens
// that charge a fee on transfer.
func NewLegacy(address types.Address, factory Factory, wrapped types.Address, assets Assets, clock bus.Clock) *Router {
	r := New(address, factory, wrapped, assets, clock)
	r.legacy = true
	return r
}

func (r *Router) Address() types.Address {
	return r.address
}

// Wrapped returns the wrapped native asset the router routes native value through.
func (r *Router) Wrapped() types.Address {
	return r.wrapped
}

func (r *Router) Legacy() bool {
	return r.legacy
}

func (r *Router) ensure(deadline uint64) error {
	if deadline < r.clock.BlockTime() {
		return ErrorExpired
	}
	return nil
}

func (r *Router) supportingFeeOnTransfer() error {
	if r.legacy {
		return ErrorUnsupported
	}
	return nil
}

func (r *Router) pair(tokenA, tokenB types.Address) (*swap.Pair, error) {
	pair := r.factory.Pair(tokenA, tokenB)
	if pair == nil {
		return nil, errors.Wrapf(ErrorPairNotExists, "%s/%s", tokenA, tokenB)
	}
	return pair, nil
}

// reserves returns the reserves of the pair for tokenA and tokenB in the
// order of the arguments.
func (r *Router) reserves(tokenA, tokenB types.Address) (reserveA, reserveB *uint256.Int, err error) {
	pair, err := r.pair(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	reserve0, reserve1, _ := pair.Reserves()
	if pair.Token0 == tokenA {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}

// receive takes the native value attached to a call from sender.
func (r *Router) receive(sender types.Address, value *uint256.Int) error {
	if value.IsZero() {
		return nil
	}
	return r.assets.TransferNative(sender, r.address, value)
}

// refund returns what is left of the attached value over used.
func (r *Router) refund(sender types.Address, value, used *uint256.Int) error {
	if !value.Gt(used) {
		return nil
	}
	return r.assets.TransferNative(r.address, sender, new(uint256.Int).Sub(value, used))
}

// wrap deposits amount of the router native balance and sends the wrapped
// asset to pair.
func (r *Router) wrap(amount *uint256.Int, pair types.Address) error {
	if err := r.assets.Deposit(r.wrapped, r.address, amount); err != nil {
		return errors.Wrap(err, "wrap")
	}
	return r.assets.Transfer(r.wrapped, r.address, pair, amount)
}

// unwrap withdraws amount of the wrapped asset held by the router and sends
// native currency to to.
func (r *Router) unwrap(amount *uint256.Int, to types.Address) error {
	if err := r.assets.Withdraw(r.wrapped, r.address, amount); err != nil {
		return errors.Wrap(err, "unwrap")
	}
	return r.assets.TransferNative(r.address, to, amount)
}

// Quote returns the amount of B equivalent to amountA at the given reserves.
func (r *Router) Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	return swap.Quote(amountA, reserveA, reserveB)
}

func (r *Router) GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	return swap.GetAmountOut(amountIn, reserveIn, reserveOut)
}

func (r *Router) GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	return swap.GetAmountIn(amountOut, reserveIn, reserveOut)
}

// GetAmountsOut returns the amounts at every hop of path for an exact input.
func (r *Router) GetAmountsOut(amountIn *uint256.Int, path []types.Address) ([]*uint256.Int, error) {
	if len(path) < 2 {
		return nil, ErrorInvalidPath
	}

	amounts := make([]*uint256.Int, len(path))
	amounts[0] = new(uint256.Int).Set(amountIn)
	for i := 0; i < len(path)-1; i++ {
		reserveIn, reserveOut, err := r.reserves(path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		if amounts[i+1], err = swap.GetAmountOut(amounts[i], reserveIn, reserveOut); err != nil {
			return nil, err
		}
	}

	return amounts, nil
}

// GetAmountsIn returns the amounts at every hop of path for an exact output.
func (r *Router) GetAmountsIn(amountOut *uint256.Int, path []types.Address) ([]*uint256.Int, error) {
	if len(path) < 2 {
		return nil, ErrorInvalidPath
	}

	amounts := make([]*uint256.Int, len(path))
	amounts[len(amounts)-1] = new(uint256.Int).Set(amountOut)
	for i := len(path) - 1; i > 0; i-- {
		reserveIn, reserveOut, err := r.reserves(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		if amounts[i-1], err = swap.GetAmountIn(amounts[i], reserveIn, reserveOut); err != nil {
			return nil, err
		}
	}

	return amounts, nil
}
