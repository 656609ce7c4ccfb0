package swap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/guard"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var Bound = uint256.NewInt(types.MinimumLiquidity)

const mainPrefix = byte('s')

const pairDataPrefix = 'd'
const factoryPrefix = 'f'
const allPairsPrefix = 'l'

var (
	ErrorIdenticalAddresses          = errors.New("IDENTICAL_ADDRESSES")
	ErrorZeroAddress                 = errors.New("ZERO_ADDRESS")
	ErrorPairExists                  = errors.New("PAIR_EXISTS")
	ErrorNotExist                    = errors.New("PAIR_NOT_EXISTS")
	ErrorForbidden                   = errors.New("FORBIDDEN")
	ErrorFactoryExists               = errors.New("FACTORY_EXISTS")
	ErrorFactoryNotDeployed          = errors.New("FACTORY_NOT_DEPLOYED")
	ErrorInsufficientLiquidityMinted = errors.New("INSUFFICIENT_LIQUIDITY_MINTED")
	ErrorInsufficientLiquidityBurned = errors.New("INSUFFICIENT_LIQUIDITY_BURNED")
	ErrorK                           = errors.New("K")
	ErrorInsufficientInputAmount     = errors.New("INSUFFICIENT_INPUT_AMOUNT")
	ErrorInsufficientOutputAmount    = errors.New("INSUFFICIENT_OUTPUT_AMOUNT")
	ErrorInsufficientLiquidity       = errors.New("INSUFFICIENT_LIQUIDITY")
	ErrorInsufficientAmount          = errors.New("INSUFFICIENT_AMOUNT")
	ErrorInvalidTo                   = errors.New("INVALID_TO")
	ErrorCalleeNotExists             = errors.New("CALLEE_NOT_EXISTS")
	ErrorOverflow                    = math.ErrorOverflow
	ErrorReentrancy                  = guard.ErrorLocked
)

// Callee receives flash swap callbacks for the address it is registered at.
type Callee interface {
	SwapCall(sender types.Address, amount0, amount1 *uint256.Int, data []byte) error
}

type RSwap interface {
	Export(state *types.AppState)
	Address() types.Address
	FeeTo() types.Address
	FeeToSetter() types.Address
	GetPair(tokenA, tokenB types.Address) (types.Address, bool)
	Pair(tokenA, tokenB types.Address) *Pair
	PairByAddress(address types.Address) *Pair
	AllPairs(index int) (types.Address, bool)
	AllPairsLength() int
	Pairs() []*Pair
	GetBestTradeExactIn(ctx context.Context, from, to types.Address, amount *uint256.Int, maxHops int) *Trade
	GetBestTradeExactOut(ctx context.Context, from, to types.Address, amount *uint256.Int, maxHops int) *Trade
}

// Swap is the pair factory. It owns every pair by value; other modules refer
// to pairs by address.
type Swap struct {
	muPairs   sync.RWMutex
	pairs     map[PairKey]*Pair
	byAddress map[types.Address]*Pair
	allPairs  []types.Address
	dirties   map[PairKey]struct{}

	muCallees sync.RWMutex
	callees   map[types.Address]Callee

	muFactory    sync.RWMutex
	factory      *factoryData
	dirtyFactory bool

	bus *bus.Bus
}

type factoryData struct {
	Address     types.Address
	FeeTo       types.Address
	FeeToSetter types.Address
}

func New(bus *bus.Bus) *Swap {
	return &Swap{
		pairs:     map[PairKey]*Pair{},
		byAddress: map[types.Address]*Pair{},
		dirties:   map[PairKey]struct{}{},
		callees:   map[types.Address]Callee{},
		bus:       bus,
	}
}

// Deploy binds the factory to its address. A state holds one pair factory.
func (s *Swap) Deploy(address, feeToSetter types.Address) error {
	s.muFactory.Lock()
	defer s.muFactory.Unlock()

	if s.factory != nil {
		return ErrorFactoryExists
	}

	s.factory = &factoryData{Address: address, FeeToSetter: feeToSetter}
	s.dirtyFactory = true
	s.bus.Record("swap.deploy", func() {
		s.muFactory.Lock()
		defer s.muFactory.Unlock()
		s.factory = nil
	})

	return nil
}

func (s *Swap) Deployed() bool {
	s.muFactory.RLock()
	defer s.muFactory.RUnlock()

	return s.factory != nil
}

func (s *Swap) Address() types.Address {
	s.muFactory.RLock()
	defer s.muFactory.RUnlock()

	if s.factory == nil {
		return types.ZeroAddress
	}
	return s.factory.Address
}

func (s *Swap) FeeTo() types.Address {
	s.muFactory.RLock()
	defer s.muFactory.RUnlock()

	if s.factory == nil {
		return types.ZeroAddress
	}
	return s.factory.FeeTo
}

func (s *Swap) FeeToSetter() types.Address {
	s.muFactory.RLock()
	defer s.muFactory.RUnlock()

	if s.factory == nil {
		return types.ZeroAddress
	}
	return s.factory.FeeToSetter
}

// SetFeeTo switches the protocol fee on (non-zero feeTo) or off.
func (s *Swap) SetFeeTo(sender, feeTo types.Address) error {
	return s.setFactoryField(sender, func(f *factoryData) *types.Address { return &f.FeeTo }, feeTo)
}

func (s *Swap) SetFeeToSetter(sender, feeToSetter types.Address) error {
	return s.setFactoryField(sender, func(f *factoryData) *types.Address { return &f.FeeToSetter }, feeToSetter)
}

func (s *Swap) setFactoryField(sender types.Address, field func(*factoryData) *types.Address, value types.Address) error {
	s.muFactory.Lock()
	defer s.muFactory.Unlock()

	if s.factory == nil {
		return ErrorFactoryNotDeployed
	}
	if sender != s.factory.FeeToSetter {
		return ErrorForbidden
	}

	ptr := field(s.factory)
	prev := *ptr
	*ptr = value
	s.dirtyFactory = true
	s.bus.Record("swap.factory", func() {
		s.muFactory.Lock()
		defer s.muFactory.Unlock()
		*ptr = prev
	})

	return nil
}

// RegisterCallee installs the flash swap receiver for address.
func (s *Swap) RegisterCallee(address types.Address, callee Callee) {
	s.muCallees.Lock()
	defer s.muCallees.Unlock()

	s.callees[address] = callee
}

func (s *Swap) callee(address types.Address) Callee {
	s.muCallees.RLock()
	defer s.muCallees.RUnlock()

	return s.callees[address]
}

type PairKey struct {
	Token0, Token1 types.Address
}

func (pk PairKey) sort() PairKey {
	if pk.isSorted() {
		return pk
	}
	return pk.reverse()
}

func (pk *PairKey) isSorted() bool {
	return pk.Token0.Compare(pk.Token1) < 0
}

func (pk *PairKey) reverse() PairKey {
	return PairKey{Token0: pk.Token1, Token1: pk.Token0}
}

func (pk PairKey) bytes() []byte {
	key := pk.sort()
	return append(key.Token0.Bytes(), key.Token1.Bytes()...)
}

func (pk PairKey) pathData() []byte {
	return append([]byte{pairDataPrefix}, pk.bytes()...)
}

// PairAddress derives the handle of the pair for the sorted key.
func PairAddress(factory types.Address, key PairKey) types.Address {
	salt := crypto.Keccak256(key.bytes())
	data := make([]byte, 0, 1+types.AddressLength+len(salt))
	data = append(data, 0xff)
	data = append(data, factory.Bytes()...)
	data = append(data, salt...)

	return types.BytesToAddress(crypto.Keccak256(data)[12:])
}

// CreatePair registers the pair for tokenA and tokenB together with its
// liquidity share asset.
func (s *Swap) CreatePair(tokenA, tokenB types.Address) (*Pair, error) {
	if tokenA == tokenB {
		return nil, ErrorIdenticalAddresses
	}
	key := PairKey{Token0: tokenA, Token1: tokenB}.sort()
	if key.Token0.IsZero() {
		return nil, ErrorZeroAddress
	}

	factory := s.Address()
	if factory.IsZero() {
		return nil, ErrorFactoryNotDeployed
	}

	s.muPairs.Lock()
	defer s.muPairs.Unlock()

	if _, ok := s.pairs[key]; ok {
		return nil, ErrorPairExists
	}

	address := PairAddress(factory, key)
	if err := s.bus.Assets().Create(address, "UNI-V2", types.DefaultDecimals, address); err != nil {
		return nil, err
	}

	pair := s.addPair(key, address)
	s.dirties[key] = struct{}{}
	s.allPairs = append(s.allPairs, address)
	index := len(s.allPairs)

	s.bus.Record("swap.createPair", func() {
		s.muPairs.Lock()
		defer s.muPairs.Unlock()
		delete(s.pairs, key)
		delete(s.byAddress, address)
		s.allPairs = s.allPairs[:index-1]
	})
	s.bus.AddEvent(&events.PairCreatedEvent{Token0: key.Token0, Token1: key.Token1, Pair: address, Index: uint64(index)})
	s.bus.Logger().Debug("pair created", "pair", address.String(), "token0", key.Token0.String(), "token1", key.Token1.String())

	return pair, nil
}

// ReturnPair returns the existing pair or creates it.
func (s *Swap) ReturnPair(tokenA, tokenB types.Address) (*Pair, error) {
	if pair := s.Pair(tokenA, tokenB); pair != nil {
		return pair, nil
	}
	return s.CreatePair(tokenA, tokenB)
}

// GetPair is an order-independent lookup of the pair handle.
func (s *Swap) GetPair(tokenA, tokenB types.Address) (types.Address, bool) {
	pair := s.Pair(tokenA, tokenB)
	if pair == nil {
		return types.ZeroAddress, false
	}
	return pair.address, true
}

func (s *Swap) SwapPoolExist(tokenA, tokenB types.Address) bool {
	return s.Pair(tokenA, tokenB) != nil
}

func (s *Swap) Pair(tokenA, tokenB types.Address) *Pair {
	s.muPairs.RLock()
	defer s.muPairs.RUnlock()

	return s.pairs[PairKey{Token0: tokenA, Token1: tokenB}.sort()]
}

func (s *Swap) PairByAddress(address types.Address) *Pair {
	s.muPairs.RLock()
	defer s.muPairs.RUnlock()

	return s.byAddress[address]
}

func (s *Swap) AllPairs(index int) (types.Address, bool) {
	s.muPairs.RLock()
	defer s.muPairs.RUnlock()

	if index < 0 || index >= len(s.allPairs) {
		return types.ZeroAddress, false
	}
	return s.allPairs[index], true
}

func (s *Swap) AllPairsLength() int {
	s.muPairs.RLock()
	defer s.muPairs.RUnlock()

	return len(s.allPairs)
}

// Pairs returns every pair in creation order.
func (s *Swap) Pairs() []*Pair {
	s.muPairs.RLock()
	defer s.muPairs.RUnlock()

	pairs := make([]*Pair, 0, len(s.allPairs))
	for _, address := range s.allPairs {
		pairs = append(pairs, s.byAddress[address])
	}
	return pairs
}

func (s *Swap) markDirty(key PairKey) func() {
	return func() {
		s.muPairs.Lock()
		defer s.muPairs.Unlock()
		s.dirties[key] = struct{}{}
	}
}

func (s *Swap) addPair(key PairKey, address types.Address) *Pair {
	pair := &Pair{
		PairKey: key,
		address: address,
		pairData: &pairData{
			RWMutex:              &sync.RWMutex{},
			Reserve0:             new(uint256.Int),
			Reserve1:             new(uint256.Int),
			Price0CumulativeLast: new(uint256.Int),
			Price1CumulativeLast: new(uint256.Int),
			KLast:                new(uint256.Int),
		},
		guard: &guard.Guard{},
		swap:  s,
	}
	pair.markDirty = s.markDirty(key)

	s.pairs[key] = pair
	s.byAddress[address] = pair

	return pair
}

func (s *Swap) getOrderedDirtyPairs() []PairKey {
	keys := make([]PairKey, 0, len(s.dirties))
	for k := range s.dirties {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].bytes(), keys[j].bytes()) == 1
	})

	return keys
}

// pairRecord is the persisted form of a pair.
type pairRecord struct {
	Address              types.Address
	Reserve0             *big.Int
	Reserve1             *big.Int
	BlockTimestampLast   uint64
	Price0CumulativeLast *big.Int
	Price1CumulativeLast *big.Int
	KLast                *big.Int
}

func (s *Swap) Commit(db tree.MTree) error {
	basePath := []byte{mainPrefix}

	s.muFactory.Lock()
	if s.dirtyFactory {
		s.dirtyFactory = false
		path := append(basePath, factoryPrefix)
		if s.factory == nil {
			db.Remove(path)
		} else {
			b, err := rlp.EncodeToBytes(s.factory)
			if err != nil {
				s.muFactory.Unlock()
				return err
			}
			db.Set(path, b)
		}
	}
	s.muFactory.Unlock()

	s.muPairs.Lock()
	defer s.muPairs.Unlock()

	if len(s.dirties) == 0 {
		return nil
	}

	for _, key := range s.getOrderedDirtyPairs() {
		path := append([]byte{mainPrefix}, key.pathData()...)
		pair, ok := s.pairs[key]
		if !ok {
			db.Remove(path)
			continue
		}

		pairDataBytes, err := rlp.EncodeToBytes(pair.record())
		if err != nil {
			return fmt.Errorf("can't encode pair %s: %v", pair.address.String(), err)
		}
		db.Set(path, pairDataBytes)
	}
	s.dirties = map[PairKey]struct{}{}

	list, err := rlp.EncodeToBytes(s.allPairs)
	if err != nil {
		return err
	}
	db.Set([]byte{mainPrefix, allPairsPrefix}, list)

	return nil
}

// Load restores the factory and every pair from the state tree.
func (s *Swap) Load(db tree.ReadOnlyTree) error {
	s.muFactory.Lock()
	_, data := db.Get([]byte{mainPrefix, factoryPrefix})
	if len(data) != 0 {
		factory := new(factoryData)
		if err := rlp.DecodeBytes(data, factory); err != nil {
			s.muFactory.Unlock()
			return fmt.Errorf("failed to decode factory: %v", err)
		}
		s.factory = factory
	}
	s.muFactory.Unlock()

	s.muPairs.Lock()
	defer s.muPairs.Unlock()

	_, data = db.Get([]byte{mainPrefix, allPairsPrefix})
	if len(data) != 0 {
		if err := rlp.DecodeBytes(data, &s.allPairs); err != nil {
			return fmt.Errorf("failed to decode pairs list: %v", err)
		}
	}

	var err error
	db.IteratePrefix([]byte{mainPrefix, pairDataPrefix}, func(key []byte, value []byte) bool {
		body := key[2:]
		pk := PairKey{
			Token0: types.BytesToAddress(body[:types.AddressLength]),
			Token1: types.BytesToAddress(body[types.AddressLength:]),
		}
		r := new(pairRecord)
		if err = rlp.DecodeBytes(value, r); err != nil {
			err = fmt.Errorf("failed to decode pair %x: %v", body, err)
			return true
		}
		pair := s.addPair(pk, r.Address)
		pair.load(r)
		return false
	})

	return err
}

func (s *Swap) Export(state *types.AppState) {
	state.Factory = types.Factory{
		Address:     s.Address(),
		FeeTo:       s.FeeTo(),
		FeeToSetter: s.FeeToSetter(),
	}

	for _, pair := range s.Pairs() {
		pair.RLock()
		state.Pools = append(state.Pools, types.Pool{
			Address:              pair.address,
			Token0:               pair.Token0,
			Token1:               pair.Token1,
			Reserve0:             pair.Reserve0.Dec(),
			Reserve1:             pair.Reserve1.Dec(),
			Price0CumulativeLast: pair.Price0CumulativeLast.Dec(),
			Price1CumulativeLast: pair.Price1CumulativeLast.Dec(),
			BlockTimestampLast:   pair.BlockTimestampLast,
			KLast:                pair.KLast.Dec(),
		})
		pair.RUnlock()
	}
}
