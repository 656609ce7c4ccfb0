// Package exchange implements the legacy single-asset pools: each exchange
// trades one token against native currency and issues its own share asset.
package exchange

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

const mainPrefix = byte('e')

const factoryPrefix = 'f'
const exchangePrefix = 'x'

// MinimumInitialNative is the smallest native deposit accepted by an empty exchange.
var MinimumInitialNative = uint256.NewInt(1e9)

var (
	ErrorExchangeExists        = errors.New("EXCHANGE_EXISTS")
	ErrorExchangeNotExists     = errors.New("EXCHANGE_NOT_EXISTS")
	ErrorFactoryExists         = errors.New("FACTORY_EXISTS")
	ErrorFactoryNotDeployed    = errors.New("FACTORY_NOT_DEPLOYED")
	ErrorInvalidToken          = errors.New("INVALID_TOKEN")
	ErrorExpired               = errors.New("EXPIRED")
	ErrorInvalidArgument       = errors.New("INVALID_ARGUMENT")
	ErrorInsufficientLiquidity = errors.New("INSUFFICIENT_LIQUIDITY")
	ErrorInsufficientOutput    = errors.New("INSUFFICIENT_OUTPUT")
	ErrorExcessiveInput        = errors.New("EXCESSIVE_INPUT")
)

var (
	feeMultiplier = uint256.NewInt(types.FeeDenominator - types.FeeNumerator)
	feeBase       = uint256.NewInt(types.FeeDenominator)
	one           = uint256.NewInt(1)
)

type RExchanges interface {
	Export(state *types.AppState)
	Address() types.Address
	GetExchange(token types.Address) (types.Address, bool)
	GetToken(exchange types.Address) (types.Address, bool)
	Exchange(token types.Address) *Exchange
}

// Exchanges is the legacy factory: one exchange per token.
type Exchanges struct {
	mu        sync.RWMutex
	address   types.Address
	byToken   map[types.Address]*Exchange
	byAddress map[types.Address]*Exchange
	dirty     bool

	bus *bus.Bus
}

func NewExchanges(bus *bus.Bus) *Exchanges {
	return &Exchanges{
		byToken:   map[types.Address]*Exchange{},
		byAddress: map[types.Address]*Exchange{},
		bus:       bus,
	}
}

func (e *Exchanges) Deploy(address types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.address.IsZero() {
		return ErrorFactoryExists
	}

	e.address = address
	e.dirty = true
	e.bus.Record("exchange.deploy", func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.address = types.ZeroAddress
	})

	return nil
}

func (e *Exchanges) Address() types.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.address
}

// ExchangeAddress derives the handle of the exchange for token.
func ExchangeAddress(factory, token types.Address) types.Address {
	return types.BytesToAddress(crypto.Keccak256(factory.Bytes(), token.Bytes())[12:])
}

// CreateExchange launches the exchange for token together with its share asset.
func (e *Exchanges) CreateExchange(token types.Address) (*Exchange, error) {
	if token.IsZero() {
		return nil, ErrorInvalidToken
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.address.IsZero() {
		return nil, ErrorFactoryNotDeployed
	}
	if _, ok := e.byToken[token]; ok {
		return nil, ErrorExchangeExists
	}
	if !e.bus.Assets().Exists(token) {
		return nil, ErrorInvalidToken
	}

	address := ExchangeAddress(e.address, token)
	if err := e.bus.Assets().Create(address, "UNI-V1", types.DefaultDecimals, address); err != nil {
		return nil, err
	}

	exchange := e.add(token, address)
	e.dirty = true
	e.bus.Record("exchange.create", func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.byToken, token)
		delete(e.byAddress, address)
	})
	e.bus.AddEvent(&events.ExchangeCreatedEvent{Token: token, Exchange: address})
	e.bus.Logger().Debug("exchange created", "exchange", address.String(), "token", token.String())

	return exchange, nil
}

func (e *Exchanges) add(token, address types.Address) *Exchange {
	exchange := &Exchange{address: address, token: token, bus: e.bus}
	e.byToken[token] = exchange
	e.byAddress[address] = exchange
	return exchange
}

func (e *Exchanges) GetExchange(token types.Address) (types.Address, bool) {
	exchange := e.Exchange(token)
	if exchange == nil {
		return types.ZeroAddress, false
	}
	return exchange.address, true
}

func (e *Exchanges) GetToken(address types.Address) (types.Address, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	exchange, ok := e.byAddress[address]
	if !ok {
		return types.ZeroAddress, false
	}
	return exchange.token, true
}

func (e *Exchanges) Exchange(token types.Address) *Exchange {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.byToken[token]
}

func (e *Exchanges) sortedTokens() []types.Address {
	tokens := make([]types.Address, 0, len(e.byToken))
	for token := range e.byToken {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Compare(tokens[j]) < 0 })
	return tokens
}

type exchangeRecord struct {
	Token   types.Address
	Address types.Address
}

func (e *Exchanges) Commit(db tree.MTree) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dirty {
		return nil
	}
	e.dirty = false

	db.Set([]byte{mainPrefix, factoryPrefix}, e.address.Bytes())
	for _, token := range e.sortedTokens() {
		data, err := rlp.EncodeToBytes(&exchangeRecord{Token: token, Address: e.byToken[token].address})
		if err != nil {
			return fmt.Errorf("can't encode exchange of %s: %v", token.String(), err)
		}
		db.Set(append([]byte{mainPrefix, exchangePrefix}, token.Bytes()...), data)
	}

	return nil
}

func (e *Exchanges) Load(db tree.ReadOnlyTree) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, data := db.Get([]byte{mainPrefix, factoryPrefix}); len(data) != 0 {
		e.address = types.BytesToAddress(data)
	}

	var err error
	db.IteratePrefix([]byte{mainPrefix, exchangePrefix}, func(key []byte, value []byte) bool {
		r := new(exchangeRecord)
		if err = rlp.DecodeBytes(value, r); err != nil {
			err = fmt.Errorf("failed to decode exchange %x: %v", key[2:], err)
			return true
		}
		e.add(r.Token, r.Address)
		return false
	})

	return err
}

func (e *Exchanges) Export(state *types.AppState) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, token := range e.sortedTokens() {
		state.Exchanges = append(state.Exchanges, types.Exchange{Address: e.byToken[token].address, Token: token})
	}
}

// Exchange is a token/native pool. Its reserves are the ledger balances held at
// its address.
type Exchange struct {
	address types.Address
	token   types.Address
	bus     *bus.Bus
}

func (x *Exchange) Address() types.Address {
	return x.address
}

func (x *Exchange) Token() types.Address {
	return x.token
}

func (x *Exchange) TotalSupply() *uint256.Int {
	return x.bus.Assets().TotalSupply(x.address)
}

// Reserves returns the native and token balances of the exchange.
func (x *Exchange) Reserves() (native, token *uint256.Int) {
	assets := x.bus.Assets()
	return assets.NativeBalance(x.address), assets.BalanceOf(x.token, x.address)
}

func (x *Exchange) checkDeadline(deadline uint64) error {
	if deadline < x.bus.BlockTime() {
		return ErrorExpired
	}
	return nil
}

// AddLiquidity deposits value native from sender with the proportional token
// amount, capped by maxTokens. The first deposit sets the price.
func (x *Exchange) AddLiquidity(sender types.Address, minLiquidity, maxTokens *uint256.Int, deadline uint64, value *uint256.Int) (*uint256.Int, error) {
	if err := x.checkDeadline(deadline); err != nil {
		return nil, err
	}
	if maxTokens.IsZero() || value.IsZero() {
		return nil, ErrorInvalidArgument
	}

	assets := x.bus.Assets()
	nativeReserve, tokenReserve := x.Reserves()
	totalLiquidity := x.TotalSupply()

	var tokenAmount, liquidity *uint256.Int
	if !totalLiquidity.IsZero() {
		if minLiquidity.IsZero() || nativeReserve.IsZero() {
			return nil, ErrorInvalidArgument
		}
		amount, err := math.MulDiv(value, tokenReserve, nativeReserve)
		if err != nil {
			return nil, err
		}
		tokenAmount = amount.Add(amount, one)
		if liquidity, err = math.MulDiv(value, totalLiquidity, nativeReserve); err != nil {
			return nil, err
		}
		if tokenAmount.Gt(maxTokens) {
			return nil, ErrorExcessiveInput
		}
		if liquidity.Lt(minLiquidity) {
			return nil, ErrorInsufficientLiquidity
		}
	} else {
		if value.Lt(MinimumInitialNative) {
			return nil, ErrorInvalidArgument
		}
		tokenAmount = maxTokens
		liquidity = new(uint256.Int).Set(value)
	}

	if err := assets.TransferNative(sender, x.address, value); err != nil {
		return nil, err
	}
	if err := assets.Mint(x.address, x.address, sender, liquidity); err != nil {
		return nil, err
	}
	if err := assets.TransferFrom(x.token, x.address, sender, x.address, tokenAmount); err != nil {
		return nil, err
	}
	x.bus.AddEvent(&events.AddLiquidityEvent{Exchange: x.address, Provider: sender, NativeAmount: value.Dec(), TokenAmount: tokenAmount.Dec()})

	return liquidity, nil
}

// RemoveLiquidity burns amount shares of sender and pays out both reserves pro rata.
func (x *Exchange) RemoveLiquidity(sender types.Address, amount, minNative, minTokens *uint256.Int, deadline uint64) (nativeAmount, tokenAmount *uint256.Int, err error) {
	if err := x.checkDeadline(deadline); err != nil {
		return nil, nil, err
	}
	if amount.IsZero() || minNative.IsZero() || minTokens.IsZero() {
		return nil, nil, ErrorInvalidArgument
	}

	totalLiquidity := x.TotalSupply()
	if totalLiquidity.IsZero() {
		return nil, nil, ErrorInsufficientLiquidity
	}

	nativeReserve, tokenReserve := x.Reserves()
	if nativeAmount, err = math.MulDiv(amount, nativeReserve, totalLiquidity); err != nil {
		return nil, nil, err
	}
	if tokenAmount, err = math.MulDiv(amount, tokenReserve, totalLiquidity); err != nil {
		return nil, nil, err
	}
	if nativeAmount.Lt(minNative) || tokenAmount.Lt(minTokens) {
		return nil, nil, ErrorInsufficientOutput
	}

	assets := x.bus.Assets()
	if err := assets.Burn(x.address, x.address, sender, amount); err != nil {
		return nil, nil, err
	}
	if err := assets.TransferNative(x.address, sender, nativeAmount); err != nil {
		return nil, nil, err
	}
	if err := assets.Transfer(x.token, x.address, sender, tokenAmount); err != nil {
		return nil, nil, err
	}
	x.bus.AddEvent(&events.RemoveLiquidityEvent{Exchange: x.address, Provider: sender, NativeAmount: nativeAmount.Dec(), TokenAmount: tokenAmount.Dec()})

	return nativeAmount, tokenAmount, nil
}

func getInputPrice(inputAmount, inputReserve, outputReserve *uint256.Int) (*uint256.Int, error) {
	if inputReserve.IsZero() || outputReserve.IsZero() {
		return nil, ErrorInsufficientLiquidity
	}

	inputAmountWithFee, err := math.Mul(inputAmount, feeMultiplier)
	if err != nil {
		return nil, err
	}
	numerator, err := math.Mul(inputAmountWithFee, outputReserve)
	if err != nil {
		return nil, err
	}
	denominator, err := math.Mul(inputReserve, feeBase)
	if err != nil {
		return nil, err
	}
	if denominator, err = math.Add(denominator, inputAmountWithFee); err != nil {
		return nil, err
	}
	return math.Div(numerator, denominator)
}

// GetNativeToTokenInputPrice quotes the tokens bought for nativeSold.
func (x *Exchange) GetNativeToTokenInputPrice(nativeSold *uint256.Int) (*uint256.Int, error) {
	if nativeSold.IsZero() {
		return nil, ErrorInvalidArgument
	}
	nativeReserve, tokenReserve := x.Reserves()
	return getInputPrice(nativeSold, nativeReserve, tokenReserve)
}

// GetTokenToNativeInputPrice quotes the native bought for tokensSold.
func (x *Exchange) GetTokenToNativeInputPrice(tokensSold *uint256.Int) (*uint256.Int, error) {
	if tokensSold.IsZero() {
		return nil, ErrorInvalidArgument
	}
	nativeReserve, tokenReserve := x.Reserves()
	return getInputPrice(tokensSold, tokenReserve, nativeReserve)
}

// NativeToTokenSwapInput sells value native of sender for at least minTokens.
func (x *Exchange) NativeToTokenSwapInput(sender types.Address, minTokens *uint256.Int, deadline uint64, value *uint256.Int) (*uint256.Int, error) {
	if err := x.checkDeadline(deadline); err != nil {
		return nil, err
	}
	if value.IsZero() || minTokens.IsZero() {
		return nil, ErrorInvalidArgument
	}

	tokensBought, err := x.GetNativeToTokenInputPrice(value)
	if err != nil {
		return nil, err
	}
	if tokensBought.Lt(minTokens) {
		return nil, ErrorInsufficientOutput
	}

	assets := x.bus.Assets()
	if err := assets.TransferNative(sender, x.address, value); err != nil {
		return nil, err
	}
	if err := assets.Transfer(x.token, x.address, sender, tokensBought); err != nil {
		return nil, err
	}
	x.bus.AddEvent(&events.TokenPurchaseEvent{Exchange: x.address, Buyer: sender, NativeSold: value.Dec(), TokensBought: tokensBought.Dec()})

	return tokensBought, nil
}

// TokenToNativeSwapInput sells tokensSold of sender for at least minNative.
func (x *Exchange) TokenToNativeSwapInput(sender types.Address, tokensSold, minNative *uint256.Int, deadline uint64) (*uint256.Int, error) {
	if err := x.checkDeadline(deadline); err != nil {
		return nil, err
	}
	if tokensSold.IsZero() || minNative.IsZero() {
		return nil, ErrorInvalidArgument
	}

	nativeBought, err := x.GetTokenToNativeInputPrice(tokensSold)
	if err != nil {
		return nil, err
	}
	if nativeBought.Lt(minNative) {
		return nil, ErrorInsufficientOutput
	}

	assets := x.bus.Assets()
	if err := assets.TransferFrom(x.token, x.address, sender, x.address, tokensSold); err != nil {
		return nil, err
	}
	if err := assets.TransferNative(x.address, sender, nativeBought); err != nil {
		return nil, err
	}
	x.bus.AddEvent(&events.NativePurchaseEvent{Exchange: x.address, Buyer: sender, TokensSold: tokensSold.Dec(), NativeBought: nativeBought.Dec()})

	return nativeBought, nil
}
