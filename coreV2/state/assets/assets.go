package assets

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/helpers"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

const mainPrefix = byte('a')

const (
	assetPrefix     = byte('t')
	balancePrefix   = byte('b')
	allowancePrefix = byte('l')
	nativePrefix    = byte('n')
)

// NativeAsset is the checker key of the host native currency.
var NativeAsset = types.ZeroAddress

var (
	ErrorInsufficientBalance   = errors.New("INSUFFICIENT_BALANCE")
	ErrorInsufficientAllowance = errors.New("INSUFFICIENT_ALLOWANCE")
	ErrorOverflow              = math.ErrorOverflow
	ErrorNotMinter             = errors.New("NOT_MINTER")
	ErrorAssetNotExists        = errors.New("ASSET_NOT_EXISTS")
	ErrorAssetExists           = errors.New("ASSET_EXISTS")
	ErrorNotWrapped            = errors.New("NOT_WRAPPED")
	ErrorInvalidFee            = errors.New("INVALID_FEE")
)

type RAssets interface {
	Export(state *types.AppState)
	Asset(address types.Address) *Model
	Exists(address types.Address) bool
	BalanceOf(asset, owner types.Address) *uint256.Int
	Allowance(asset, owner, spender types.Address) *uint256.Int
	TotalSupply(asset types.Address) *uint256.Int
	NativeBalance(owner types.Address) *uint256.Int
}

type Assets struct {
	list       map[types.Address]*Model
	balances   map[holding]*uint256.Int
	allowances map[grant]*uint256.Int
	native     map[types.Address]*uint256.Int

	dirtyAssets     map[types.Address]struct{}
	dirtyBalances   map[holding]struct{}
	dirtyAllowances map[grant]struct{}
	dirtyNative     map[types.Address]struct{}

	bus *bus.Bus

	lock sync.RWMutex
}

func NewAssets(stateBus *bus.Bus) *Assets {
	assets := &Assets{
		list:       map[types.Address]*Model{},
		balances:   map[holding]*uint256.Int{},
		allowances: map[grant]*uint256.Int{},
		native:     map[types.Address]*uint256.Int{},

		dirtyAssets:     map[types.Address]struct{}{},
		dirtyBalances:   map[holding]struct{}{},
		dirtyAllowances: map[grant]struct{}{},
		dirtyNative:     map[types.Address]struct{}{},

		bus: stateBus,
	}
	stateBus.SetAssets(assets)

	return assets
}

// Create registers a new asset with zero supply.
func (a *Assets) Create(address types.Address, symbol string, decimals uint8, minter types.Address) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.create(&Model{
		Address:  address,
		Symbol:   symbol,
		Decimals: decimals,
		Minter:   minter,
		Supply:   new(uint256.Int),
	})
}

// CreateWrapped registers a wrapped-native asset. The asset is its own minter
// and its address holds the native backing.
func (a *Assets) CreateWrapped(address types.Address, symbol string) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.create(&Model{
		Address:  address,
		Symbol:   symbol,
		Decimals: types.DefaultDecimals,
		Minter:   address,
		Wrapped:  true,
		Supply:   new(uint256.Int),
	})
}

func (a *Assets) create(model *Model) error {
	if _, ok := a.list[model.Address]; ok {
		return ErrorAssetExists
	}

	a.list[model.Address] = model
	a.dirtyAssets[model.Address] = struct{}{}
	a.bus.Record("assets.create", func() {
		a.lock.Lock()
		defer a.lock.Unlock()
		delete(a.list, model.Address)
	})

	return nil
}

// SetTransferFee makes an asset burn bps/10000 of every transferred amount.
func (a *Assets) SetTransferFee(caller, asset types.Address, bps uint64) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	model, ok := a.list[asset]
	if !ok {
		return ErrorAssetNotExists
	}
	if model.Minter != caller {
		return ErrorNotMinter
	}
	if bps >= 10000 {
		return ErrorInvalidFee
	}

	prev := model.TransferFeeBps
	model.TransferFeeBps = bps
	a.dirtyAssets[asset] = struct{}{}
	a.bus.Record("assets.fee", func() {
		a.lock.Lock()
		defer a.lock.Unlock()
		model.TransferFeeBps = prev
	})

	return nil
}

func (a *Assets) Exists(address types.Address) bool {
	a.lock.RLock()
	defer a.lock.RUnlock()

	_, ok := a.list[address]
	return ok
}

// Asset returns a copy of the asset model or nil.
func (a *Assets) Asset(address types.Address) *Model {
	a.lock.RLock()
	defer a.lock.RUnlock()

	model, ok := a.list[address]
	if !ok {
		return nil
	}
	return model.copy()
}

func (a *Assets) BalanceOf(asset, owner types.Address) *uint256.Int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return math.Clone(a.balances[holding{asset, owner}])
}

func (a *Assets) Allowance(asset, owner, spender types.Address) *uint256.Int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return math.Clone(a.allowances[grant{asset, owner, spender}])
}

func (a *Assets) TotalSupply(asset types.Address) *uint256.Int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	model, ok := a.list[asset]
	if !ok {
		return new(uint256.Int)
	}
	return math.Clone(model.Supply)
}

func (a *Assets) NativeBalance(owner types.Address) *uint256.Int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return math.Clone(a.native[owner])
}

// Transfer moves amount of asset from one owner to another. Fee-on-transfer
// assets burn their fee from the transferred amount.
func (a *Assets) Transfer(asset, from, to types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.transfer(asset, from, to, amount)
}

func (a *Assets) transfer(asset, from, to types.Address, amount *uint256.Int) error {
	model, ok := a.list[asset]
	if !ok {
		return ErrorAssetNotExists
	}

	fromBalance := math.Clone(a.balances[holding{asset, from}])
	if fromBalance.Lt(amount) {
		return ErrorInsufficientBalance
	}

	received := math.Clone(amount)
	fee := new(uint256.Int)
	if model.TransferFeeBps > 0 {
		var err error
		if fee, err = math.MulDiv(amount, uint256.NewInt(model.TransferFeeBps), uint256.NewInt(10000)); err != nil {
			return ErrorOverflow
		}
		received.Sub(received, fee)
	}

	if from != to {
		toBalance, err := math.Add(math.Clone(a.balances[holding{asset, to}]), received)
		if err != nil {
			return ErrorOverflow
		}
		a.setBalance(asset, from, fromBalance.Sub(fromBalance, amount))
		a.setBalance(asset, to, toBalance)
	} else if !fee.IsZero() {
		a.setBalance(asset, from, fromBalance.Sub(fromBalance, fee))
	}

	if !fee.IsZero() {
		a.setSupply(model, new(uint256.Int).Sub(model.Supply, fee))
		a.bus.AddEvent(&events.TransferEvent{Asset: asset, From: from, To: types.ZeroAddress, Amount: fee.Dec()})
	}
	a.bus.AddEvent(&events.TransferEvent{Asset: asset, From: from, To: to, Amount: received.Dec()})

	return nil
}

// Approve sets the amount spender may move on behalf of owner. The maximum
// value is never decreased by spending.
func (a *Assets) Approve(asset, owner, spender types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.list[asset]; !ok {
		return ErrorAssetNotExists
	}

	a.setAllowance(grant{asset, owner, spender}, math.Clone(amount))
	a.bus.AddEvent(&events.ApprovalEvent{Asset: asset, Owner: owner, Spender: spender, Amount: amount.Dec()})

	return nil
}

// TransferFrom moves owner funds on behalf of spender, spending the
// allowance from owner to spender even when spender is the owner.
func (a *Assets) TransferFrom(asset, spender, from, to types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.list[asset]; !ok {
		return ErrorAssetNotExists
	}

	g := grant{asset, from, spender}
	allowance := math.Clone(a.allowances[g])
	if allowance.Lt(amount) {
		return ErrorInsufficientAllowance
	}
	if !allowance.Eq(types.MaxUint256) {
		a.setAllowance(g, allowance.Sub(allowance, amount))
	}

	return a.transfer(asset, from, to, amount)
}

// Mint creates amount of asset for to. Only the asset minter may call it.
func (a *Assets) Mint(asset, caller, to types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.mint(asset, caller, to, amount)
}

func (a *Assets) mint(asset, caller, to types.Address, amount *uint256.Int) error {
	model, ok := a.list[asset]
	if !ok {
		return ErrorAssetNotExists
	}
	if model.Minter != caller {
		return ErrorNotMinter
	}

	supply, err := math.Add(model.Supply, amount)
	if err != nil {
		return ErrorOverflow
	}
	balance, err := math.Add(math.Clone(a.balances[holding{asset, to}]), amount)
	if err != nil {
		return ErrorOverflow
	}

	a.setSupply(model, supply)
	a.setBalance(asset, to, balance)
	a.bus.AddEvent(&events.TransferEvent{Asset: asset, From: types.ZeroAddress, To: to, Amount: amount.Dec()})

	return nil
}

// Burn destroys amount of asset held by from. Only the asset minter may call it.
func (a *Assets) Burn(asset, caller, from types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.burn(asset, caller, from, amount)
}

func (a *Assets) burn(asset, caller, from types.Address, amount *uint256.Int) error {
	model, ok := a.list[asset]
	if !ok {
		return ErrorAssetNotExists
	}
	if model.Minter != caller {
		return ErrorNotMinter
	}

	balance := math.Clone(a.balances[holding{asset, from}])
	if balance.Lt(amount) {
		return ErrorInsufficientBalance
	}

	a.setBalance(asset, from, balance.Sub(balance, amount))
	a.setSupply(model, new(uint256.Int).Sub(model.Supply, amount))
	a.bus.AddEvent(&events.TransferEvent{Asset: asset, From: from, To: types.ZeroAddress, Amount: amount.Dec()})

	return nil
}

// Deposit wraps native currency of account into the wrapped asset.
func (a *Assets) Deposit(asset, account types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	model, ok := a.list[asset]
	if !ok {
		return ErrorAssetNotExists
	}
	if !model.Wrapped {
		return ErrorNotWrapped
	}

	if err := a.transferNative(account, asset, amount); err != nil {
		return err
	}
	if err := a.mint(asset, asset, account, amount); err != nil {
		return err
	}
	a.bus.AddEvent(&events.DepositEvent{Asset: asset, Account: account, Amount: amount.Dec()})

	return nil
}

// Withdraw unwraps the wrapped asset of account back to native currency.
func (a *Assets) Withdraw(asset, account types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	model, ok := a.list[asset]
	if !ok {
		return ErrorAssetNotExists
	}
	if !model.Wrapped {
		return ErrorNotWrapped
	}

	if err := a.burn(asset, asset, account, amount); err != nil {
		return err
	}
	if err := a.transferNative(asset, account, amount); err != nil {
		return err
	}
	a.bus.AddEvent(&events.WithdrawalEvent{Asset: asset, Account: account, Amount: amount.Dec()})

	return nil
}

// AddNative credits native currency out of thin air. Used for genesis funding.
func (a *Assets) AddNative(to types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	balance, err := math.Add(math.Clone(a.native[to]), amount)
	if err != nil {
		return ErrorOverflow
	}
	a.setNative(to, balance)
	if checker := a.bus.Checker(); checker != nil {
		checker.AddAssetSupply(NativeAsset, amount.ToBig())
	}

	return nil
}

func (a *Assets) TransferNative(from, to types.Address, amount *uint256.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.transferNative(from, to, amount)
}

func (a *Assets) transferNative(from, to types.Address, amount *uint256.Int) error {
	fromBalance := math.Clone(a.native[from])
	if fromBalance.Lt(amount) {
		return ErrorInsufficientBalance
	}
	if from == to {
		return nil
	}

	toBalance, err := math.Add(math.Clone(a.native[to]), amount)
	if err != nil {
		return ErrorOverflow
	}

	a.setNative(from, fromBalance.Sub(fromBalance, amount))
	a.setNative(to, toBalance)

	return nil
}

func (a *Assets) setBalance(asset, owner types.Address, value *uint256.Int) {
	h := holding{asset, owner}
	prev := math.Clone(a.balances[h])

	a.balances[h] = value
	a.dirtyBalances[h] = struct{}{}
	if checker := a.bus.Checker(); checker != nil {
		checker.AddAsset(asset, new(big.Int).Sub(value.ToBig(), prev.ToBig()))
	}

	a.bus.Record("assets.balance", func() {
		a.lock.Lock()
		defer a.lock.Unlock()
		a.balances[h] = prev
	})
}

func (a *Assets) setSupply(model *Model, value *uint256.Int) {
	prev := math.Clone(model.Supply)

	model.Supply = value
	a.dirtyAssets[model.Address] = struct{}{}
	if checker := a.bus.Checker(); checker != nil {
		checker.AddAssetSupply(model.Address, new(big.Int).Sub(value.ToBig(), prev.ToBig()))
	}

	a.bus.Record("assets.supply", func() {
		a.lock.Lock()
		defer a.lock.Unlock()
		model.Supply = prev
	})
}

func (a *Assets) setAllowance(g grant, value *uint256.Int) {
	prev := math.Clone(a.allowances[g])

	a.allowances[g] = value
	a.dirtyAllowances[g] = struct{}{}

	a.bus.Record("assets.allowance", func() {
		a.lock.Lock()
		defer a.lock.Unlock()
		a.allowances[g] = prev
	})
}

func (a *Assets) setNative(owner types.Address, value *uint256.Int) {
	prev := math.Clone(a.native[owner])

	a.native[owner] = value
	a.dirtyNative[owner] = struct{}{}
	if checker := a.bus.Checker(); checker != nil {
		checker.AddAsset(NativeAsset, new(big.Int).Sub(value.ToBig(), prev.ToBig()))
	}

	a.bus.Record("assets.native", func() {
		a.lock.Lock()
		defer a.lock.Unlock()
		a.native[owner] = prev
	})
}

// Commit writes dirty entries to the state tree.
func (a *Assets) Commit(db tree.MTree) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	for _, address := range sortedAddresses(a.dirtyAssets) {
		path := append([]byte{mainPrefix, assetPrefix}, address[:]...)
		model, ok := a.list[address]
		if !ok {
			db.Remove(path)
			continue
		}

		data, err := rlp.EncodeToBytes(model.record())
		if err != nil {
			return fmt.Errorf("can't encode object at %x: %v", address[:], err)
		}
		db.Set(path, data)
	}
	a.dirtyAssets = map[types.Address]struct{}{}

	balanceKeys := make([][]byte, 0, len(a.dirtyBalances))
	for h := range a.dirtyBalances {
		balanceKeys = append(balanceKeys, h.key())
	}
	sortKeys(balanceKeys)
	for _, key := range balanceKeys {
		h := holding{types.BytesToAddress(key[:types.AddressLength]), types.BytesToAddress(key[types.AddressLength:])}
		setOrRemove(db, append([]byte{mainPrefix, balancePrefix}, key...), a.balances[h])
	}
	a.dirtyBalances = map[holding]struct{}{}

	allowanceKeys := make([][]byte, 0, len(a.dirtyAllowances))
	for g := range a.dirtyAllowances {
		allowanceKeys = append(allowanceKeys, g.key())
	}
	sortKeys(allowanceKeys)
	for _, key := range allowanceKeys {
		g := grant{
			types.BytesToAddress(key[:types.AddressLength]),
			types.BytesToAddress(key[types.AddressLength : 2*types.AddressLength]),
			types.BytesToAddress(key[2*types.AddressLength:]),
		}
		setOrRemove(db, append([]byte{mainPrefix, allowancePrefix}, key...), a.allowances[g])
	}
	a.dirtyAllowances = map[grant]struct{}{}

	for _, owner := range sortedAddresses(a.dirtyNative) {
		setOrRemove(db, append([]byte{mainPrefix, nativePrefix}, owner[:]...), a.native[owner])
	}
	a.dirtyNative = map[types.Address]struct{}{}

	return nil
}

// Load reads every asset entry from the state tree.
func (a *Assets) Load(db tree.ReadOnlyTree) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	var err error
	db.IteratePrefix([]byte{mainPrefix}, func(key []byte, value []byte) bool {
		if len(key) < 2 {
			return false
		}
		body := key[2:]
		switch key[1] {
		case assetPrefix:
			r := new(record)
			if err = rlp.DecodeBytes(value, r); err != nil {
				err = fmt.Errorf("failed to decode asset at %x: %v", body, err)
				return true
			}
			address := types.BytesToAddress(body)
			a.list[address] = r.model(address)
		case balancePrefix:
			h := holding{types.BytesToAddress(body[:types.AddressLength]), types.BytesToAddress(body[types.AddressLength:])}
			a.balances[h] = new(uint256.Int).SetBytes(value)
		case allowancePrefix:
			g := grant{
				types.BytesToAddress(body[:types.AddressLength]),
				types.BytesToAddress(body[types.AddressLength : 2*types.AddressLength]),
				types.BytesToAddress(body[2*types.AddressLength:]),
			}
			a.allowances[g] = new(uint256.Int).SetBytes(value)
		case nativePrefix:
			a.native[types.BytesToAddress(body)] = new(uint256.Int).SetBytes(value)
		}
		return false
	})

	return err
}

func (a *Assets) Export(state *types.AppState) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	assetsList := make(map[types.Address]*types.Asset, len(a.list))
	for address, model := range a.list {
		assetsList[address] = &types.Asset{
			Address:        address,
			Symbol:         model.Symbol,
			Decimals:       model.Decimals,
			TotalSupply:    model.Supply.Dec(),
			Minter:         model.Minter,
			Wrapped:        model.Wrapped,
			TransferFeeBps: model.TransferFeeBps,
		}
	}

	for h, balance := range a.balances {
		asset, ok := assetsList[h.asset]
		if !ok || balance.IsZero() {
			continue
		}
		asset.Balances = append(asset.Balances, types.Balance{Address: h.owner, Value: balance.Dec()})
	}
	for g, allowance := range a.allowances {
		asset, ok := assetsList[g.asset]
		if !ok || allowance.IsZero() {
			continue
		}
		asset.Allowances = append(asset.Allowances, types.Allowance{Owner: g.owner, Spender: g.spender, Value: allowance.Dec()})
	}

	for _, address := range sortedAddressKeys(assetsList) {
		asset := assetsList[address]
		sort.SliceStable(asset.Balances, func(i, j int) bool {
			return asset.Balances[i].Address.Compare(asset.Balances[j].Address) < 0
		})
		sort.SliceStable(asset.Allowances, func(i, j int) bool {
			if c := asset.Allowances[i].Owner.Compare(asset.Allowances[j].Owner); c != 0 {
				return c < 0
			}
			return asset.Allowances[i].Spender.Compare(asset.Allowances[j].Spender) < 0
		})
		state.Assets = append(state.Assets, *asset)
	}

	for owner, balance := range a.native {
		if balance.IsZero() {
			continue
		}
		state.Native = append(state.Native, types.Balance{Address: owner, Value: helpers.AmountString(balance)})
	}
	sort.SliceStable(state.Native, func(i, j int) bool {
		return state.Native[i].Address.Compare(state.Native[j].Address) < 0
	})
}

func setOrRemove(db tree.MTree, path []byte, value *uint256.Int) {
	if value == nil || value.IsZero() {
		db.Remove(path)
		return
	}
	db.Set(path, value.Bytes())
}

func sortKeys(keys [][]byte) {
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})
}

func sortedAddresses(set map[types.Address]struct{}) []types.Address {
	keys := make([]types.Address, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	return keys
}

func sortedAddressKeys(m map[types.Address]*types.Asset) []types.Address {
	keys := make([]types.Address, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	return keys
}
