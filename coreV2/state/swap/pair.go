package swap

import (
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state/guard"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/holiman/uint256"
)

var (
	thousand       = uint256.NewInt(types.FeeDenominator)
	feeNumerator   = uint256.NewInt(types.FeeNumerator)
	thousandSquare = uint256.NewInt(types.FeeDenominator * types.FeeDenominator)
	five           = uint256.NewInt(5)
)

type pairData struct {
	*sync.RWMutex
	Reserve0             *uint256.Int
	Reserve1             *uint256.Int
	BlockTimestampLast   uint64
	Price0CumulativeLast *uint256.Int
	Price1CumulativeLast *uint256.Int
	KLast                *uint256.Int
	markDirty            func()
}

// Reserves returns copies of the recorded reserves and the last update time.
func (pd *pairData) Reserves() (reserve0 *uint256.Int, reserve1 *uint256.Int, blockTimestampLast uint64) {
	pd.RLock()
	defer pd.RUnlock()
	return new(uint256.Int).Set(pd.Reserve0), new(uint256.Int).Set(pd.Reserve1), pd.BlockTimestampLast
}

// PriceCumulativeLast returns copies of both oracle accumulators.
func (pd *pairData) PriceCumulativeLast() (price0 *uint256.Int, price1 *uint256.Int) {
	pd.RLock()
	defer pd.RUnlock()
	return new(uint256.Int).Set(pd.Price0CumulativeLast), new(uint256.Int).Set(pd.Price1CumulativeLast)
}

func (pd *pairData) kLast() *uint256.Int {
	pd.RLock()
	defer pd.RUnlock()
	return new(uint256.Int).Set(pd.KLast)
}

// Pair is a constant-product pool of Token0 and Token1. Its liquidity share
// asset lives in the ledger at the pair address.
type Pair struct {
	PairKey
	*pairData
	address types.Address
	guard   *guard.Guard
	swap    *Swap
}

func (p *Pair) Address() types.Address {
	return p.address
}

// TotalSupply returns the liquidity share supply.
func (p *Pair) TotalSupply() *uint256.Int {
	return p.swap.bus.Assets().TotalSupply(p.address)
}

func (p *Pair) balances() (balance0, balance1 *uint256.Int) {
	assets := p.swap.bus.Assets()
	return assets.BalanceOf(p.Token0, p.address), assets.BalanceOf(p.Token1, p.address)
}

// Mint issues liquidity shares to to for the assets sent to the pair since the
// last reserve update.
func (p *Pair) Mint(sender, to types.Address) (liquidity *uint256.Int, err error) {
	release, err := p.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	reserve0, reserve1, _ := p.Reserves()
	balance0, balance1 := p.balances()
	amount0, err := math.Sub(balance0, reserve0)
	if err != nil {
		return nil, ErrorInsufficientInputAmount
	}
	amount1, err := math.Sub(balance1, reserve1)
	if err != nil {
		return nil, ErrorInsufficientInputAmount
	}

	feeOn, err := p.mintFee(reserve0, reserve1)
	if err != nil {
		return nil, err
	}

	assets := p.swap.bus.Assets()
	totalSupply := assets.TotalSupply(p.address)
	if totalSupply.IsZero() {
		product, err := math.Mul(amount0, amount1)
		if err != nil {
			return nil, err
		}
		liquidity = startingSupply(product)
		if !liquidity.Gt(Bound) {
			return nil, ErrorInsufficientLiquidityMinted
		}
		liquidity.Sub(liquidity, Bound)
		if err := assets.Mint(p.address, p.address, types.ZeroAddress, Bound); err != nil {
			return nil, err
		}
	} else {
		liquidity0, err := math.MulDiv(amount0, totalSupply, reserve0)
		if err != nil {
			return nil, err
		}
		liquidity1, err := math.MulDiv(amount1, totalSupply, reserve1)
		if err != nil {
			return nil, err
		}
		liquidity = math.Min(liquidity0, liquidity1)
	}

	if liquidity.IsZero() {
		return nil, ErrorInsufficientLiquidityMinted
	}
	if err := assets.Mint(p.address, p.address, to, liquidity); err != nil {
		return nil, err
	}

	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return nil, err
	}
	if feeOn {
		p.setKLast()
	}

	p.swap.bus.AddEvent(&events.MintEvent{Pair: p.address, Sender: sender, Amount0: amount0.Dec(), Amount1: amount1.Dec()})

	return liquidity, nil
}

// Burn redeems the shares held by the pair itself for both assets.
func (p *Pair) Burn(sender, to types.Address) (amount0, amount1 *uint256.Int, err error) {
	release, err := p.guard.Acquire()
	if err != nil {
		return nil, nil, err
	}
	defer release()

	reserve0, reserve1, _ := p.Reserves()
	balance0, balance1 := p.balances()

	assets := p.swap.bus.Assets()
	liquidity := assets.BalanceOf(p.address, p.address)

	feeOn, err := p.mintFee(reserve0, reserve1)
	if err != nil {
		return nil, nil, err
	}

	totalSupply := assets.TotalSupply(p.address)
	if totalSupply.IsZero() {
		return nil, nil, ErrorInsufficientLiquidityBurned
	}
	if amount0, err = math.MulDiv(liquidity, balance0, totalSupply); err != nil {
		return nil, nil, err
	}
	if amount1, err = math.MulDiv(liquidity, balance1, totalSupply); err != nil {
		return nil, nil, err
	}
	if amount0.IsZero() || amount1.IsZero() {
		return nil, nil, ErrorInsufficientLiquidityBurned
	}

	if err := assets.Burn(p.address, p.address, p.address, liquidity); err != nil {
		return nil, nil, err
	}
	if err := assets.Transfer(p.Token0, p.address, to, amount0); err != nil {
		return nil, nil, err
	}
	if err := assets.Transfer(p.Token1, p.address, to, amount1); err != nil {
		return nil, nil, err
	}

	balance0, balance1 = p.balances()
	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return nil, nil, err
	}
	if feeOn {
		p.setKLast()
	}

	p.swap.bus.AddEvent(&events.BurnEvent{Pair: p.address, Sender: sender, Amount0: amount0.Dec(), Amount1: amount1.Dec(), To: to})

	return amount0, amount1, nil
}

// Swap sends the requested outputs to to and then requires the fee-adjusted
// product of balances to cover the previous product of reserves. A non-empty
// data triggers the flash swap callback registered for to before the check.
func (p *Pair) Swap(sender types.Address, amount0Out, amount1Out *uint256.Int, to types.Address, data []byte) error {
	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrorInsufficientOutputAmount
	}

	release, err := p.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	reserve0, reserve1, _ := p.Reserves()
	if !amount0Out.Lt(reserve0) || !amount1Out.Lt(reserve1) {
		return ErrorInsufficientLiquidity
	}
	if to == p.Token0 || to == p.Token1 {
		return ErrorInvalidTo
	}

	assets := p.swap.bus.Assets()
	if !amount0Out.IsZero() {
		if err := assets.Transfer(p.Token0, p.address, to, amount0Out); err != nil {
			return err
		}
	}
	if !amount1Out.IsZero() {
		if err := assets.Transfer(p.Token1, p.address, to, amount1Out); err != nil {
			return err
		}
	}
	if len(data) > 0 {
		callee := p.swap.callee(to)
		if callee == nil {
			return ErrorCalleeNotExists
		}
		if err := callee.SwapCall(sender, amount0Out, amount1Out, data); err != nil {
			return err
		}
	}

	balance0, balance1 := p.balances()
	amount0In := amountIn(balance0, reserve0, amount0Out)
	amount1In := amountIn(balance1, reserve1, amount1Out)
	if amount0In.IsZero() && amount1In.IsZero() {
		return ErrorInsufficientInputAmount
	}

	balance0Adjusted, err := adjustedBalance(balance0, amount0In)
	if err != nil {
		return err
	}
	balance1Adjusted, err := adjustedBalance(balance1, amount1In)
	if err != nil {
		return err
	}
	product, err := math.Mul(balance0Adjusted, balance1Adjusted)
	if err != nil {
		return err
	}
	k, err := math.Mul(reserve0, reserve1)
	if err != nil {
		return err
	}
	if k, err = math.Mul(k, thousandSquare); err != nil {
		return err
	}
	if product.Lt(k) {
		return ErrorK
	}

	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return err
	}

	p.swap.bus.AddEvent(&events.SwapEvent{
		Pair:       p.address,
		Sender:     sender,
		Amount0In:  amount0In.Dec(),
		Amount1In:  amount1In.Dec(),
		Amount0Out: amount0Out.Dec(),
		Amount1Out: amount1Out.Dec(),
		To:         to,
	})

	return nil
}

// Skim sends balances above the recorded reserves to to.
func (p *Pair) Skim(to types.Address) error {
	release, err := p.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	reserve0, reserve1, _ := p.Reserves()
	balance0, balance1 := p.balances()

	assets := p.swap.bus.Assets()
	if excess, err := math.Sub(balance0, reserve0); err == nil && !excess.IsZero() {
		if err := assets.Transfer(p.Token0, p.address, to, excess); err != nil {
			return err
		}
	}
	if excess, err := math.Sub(balance1, reserve1); err == nil && !excess.IsZero() {
		if err := assets.Transfer(p.Token1, p.address, to, excess); err != nil {
			return err
		}
	}

	return nil
}

// Sync sets the reserves to the current balances.
func (p *Pair) Sync() error {
	release, err := p.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	reserve0, reserve1, _ := p.Reserves()
	balance0, balance1 := p.balances()

	return p.update(balance0, balance1, reserve0, reserve1)
}

// update records new reserves and, on the first call of a block, accumulates
// the oracle prices of the previous reserves.
func (p *Pair) update(balance0, balance1, reserve0, reserve1 *uint256.Int) error {
	if balance0.Gt(types.MaxUint112) || balance1.Gt(types.MaxUint112) {
		return ErrorOverflow
	}

	p.markDirty()

	p.pairData.Lock()
	prev := struct {
		reserve0, reserve1 *uint256.Int
		timestamp          uint64
		price0, price1     *uint256.Int
	}{p.Reserve0, p.Reserve1, p.BlockTimestampLast, p.Price0CumulativeLast, p.Price1CumulativeLast}

	blockTimestamp := p.swap.bus.BlockTime()
	if blockTimestamp > p.BlockTimestampLast && !reserve0.IsZero() && !reserve1.IsZero() {
		elapsed := uint256.NewInt(blockTimestamp - p.BlockTimestampLast)
		p.Price0CumulativeLast = math.WrappingAdd(p.Price0CumulativeLast, new(uint256.Int).Mul(encodeUQ112x112(reserve1, reserve0), elapsed))
		p.Price1CumulativeLast = math.WrappingAdd(p.Price1CumulativeLast, new(uint256.Int).Mul(encodeUQ112x112(reserve0, reserve1), elapsed))
	}
	p.Reserve0 = new(uint256.Int).Set(balance0)
	p.Reserve1 = new(uint256.Int).Set(balance1)
	if blockTimestamp > p.BlockTimestampLast {
		p.BlockTimestampLast = blockTimestamp
	}
	p.pairData.Unlock()

	p.swap.bus.Record("swap.pair", func() {
		p.pairData.Lock()
		defer p.pairData.Unlock()
		p.Reserve0, p.Reserve1, p.BlockTimestampLast = prev.reserve0, prev.reserve1, prev.timestamp
		p.Price0CumulativeLast, p.Price1CumulativeLast = prev.price0, prev.price1
	})
	p.swap.bus.AddEvent(&events.SyncEvent{Pair: p.address, Reserve0: balance0.Dec(), Reserve1: balance1.Dec()})

	return nil
}

// mintFee issues the protocol share of fee growth, one sixth of it, to the
// factory feeTo when the fee is on.
func (p *Pair) mintFee(reserve0, reserve1 *uint256.Int) (feeOn bool, err error) {
	feeTo := p.swap.FeeTo()
	feeOn = !feeTo.IsZero()
	kLast := p.kLast()

	if !feeOn {
		if !kLast.IsZero() {
			p.setKLastValue(new(uint256.Int))
		}
		return false, nil
	}
	if kLast.IsZero() {
		return true, nil
	}

	rootK := math.Sqrt(new(uint256.Int).Mul(reserve0, reserve1))
	rootKLast := math.Sqrt(kLast)
	if !rootK.Gt(rootKLast) {
		return true, nil
	}

	totalSupply := p.TotalSupply()
	numerator, err := math.Mul(totalSupply, new(uint256.Int).Sub(rootK, rootKLast))
	if err != nil {
		return true, err
	}
	denominator := new(uint256.Int).Add(new(uint256.Int).Mul(rootK, five), rootKLast)
	liquidity := new(uint256.Int).Div(numerator, denominator)
	if liquidity.IsZero() {
		return true, nil
	}

	return true, p.swap.bus.Assets().Mint(p.address, p.address, feeTo, liquidity)
}

func (p *Pair) setKLast() {
	p.pairData.RLock()
	k := new(uint256.Int).Mul(p.Reserve0, p.Reserve1)
	p.pairData.RUnlock()

	p.setKLastValue(k)
}

func (p *Pair) setKLastValue(k *uint256.Int) {
	p.markDirty()

	p.pairData.Lock()
	prev := p.KLast
	p.KLast = k
	p.pairData.Unlock()

	p.swap.bus.Record("swap.kLast", func() {
		p.pairData.Lock()
		defer p.pairData.Unlock()
		p.KLast = prev
	})
}

func (p *Pair) record() *pairRecord {
	p.pairData.RLock()
	defer p.pairData.RUnlock()

	return &pairRecord{
		Address:              p.address,
		Reserve0:             p.Reserve0.ToBig(),
		Reserve1:             p.Reserve1.ToBig(),
		BlockTimestampLast:   p.BlockTimestampLast,
		Price0CumulativeLast: p.Price0CumulativeLast.ToBig(),
		Price1CumulativeLast: p.Price1CumulativeLast.ToBig(),
		KLast:                p.KLast.ToBig(),
	}
}

func (p *Pair) load(r *pairRecord) {
	p.pairData.Lock()
	defer p.pairData.Unlock()

	p.Reserve0 = uint256.MustFromBig(r.Reserve0)
	p.Reserve1 = uint256.MustFromBig(r.Reserve1)
	p.BlockTimestampLast = r.BlockTimestampLast
	p.Price0CumulativeLast = uint256.MustFromBig(r.Price0CumulativeLast)
	p.Price1CumulativeLast = uint256.MustFromBig(r.Price1CumulativeLast)
	p.KLast = uint256.MustFromBig(r.KLast)
}

// encodeUQ112x112 returns numerator/denominator as a UQ112x112 fixed point.
func encodeUQ112x112(numerator, denominator *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(new(uint256.Int).Mul(numerator, types.Q112), denominator)
}

func amountIn(balance, reserve, amountOut *uint256.Int) *uint256.Int {
	rest := new(uint256.Int).Sub(reserve, amountOut)
	if balance.Gt(rest) {
		return new(uint256.Int).Sub(balance, rest)
	}
	return new(uint256.Int)
}

func adjustedBalance(balance, amountIn *uint256.Int) (*uint256.Int, error) {
	scaled, err := math.Mul(balance, thousand)
	if err != nil {
		return nil, err
	}
	return math.Sub(scaled, new(uint256.Int).Mul(amountIn, feeNumerator))
}

func startingSupply(product *uint256.Int) *uint256.Int {
	return math.Sqrt(product)
}
