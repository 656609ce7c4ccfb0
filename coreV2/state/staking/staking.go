// Package staking holds the rewards factory and the per-pool distributors it
// deploys and funds.
package staking

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/guard"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

const mainPrefix = byte('r')

const (
	factoryPrefix     = 'f'
	infoPrefix        = 'i'
	listPrefix        = 'l'
	distributorPrefix = 'd'
	accountPrefix     = 'a'
)

var (
	ErrorFactoryExists          = errors.New("FACTORY_EXISTS")
	ErrorFactoryNotDeployed     = errors.New("FACTORY_NOT_DEPLOYED")
	ErrorNotOwner               = errors.New("NOT_OWNER")
	ErrorAlreadyDeployed        = errors.New("ALREADY_DEPLOYED")
	ErrorNotDeployed            = errors.New("NOT_DEPLOYED")
	ErrorNotReadyToDeploy       = errors.New("NOT_READY")
	ErrorNoDeploys              = errors.New("CALLED_BEFORE_ANY_DEPLOYS")
	ErrorInvalidDuration        = errors.New("INVALID_DURATION")
	ErrorCannotStakeZero        = errors.New("CANNOT_STAKE_0")
	ErrorCannotWithdrawZero     = errors.New("CANNOT_WITHDRAW_0")
	ErrorInsufficientStake      = errors.New("INSUFFICIENT_STAKE")
	ErrorNotRewardsDistribution = errors.New("CALLER_IS_NOT_REWARDS_DISTRIBUTION")
	ErrorRewardTooHigh          = errors.New("PROVIDED_REWARD_TOO_HIGH")
	ErrorOverflow               = math.ErrorOverflow
	ErrorReentrancy             = guard.ErrorLocked
)

type RStaking interface {
	Export(state *types.AppState)
	Address() types.Address
	RewardsToken() types.Address
	Genesis() uint64
	Info(stakingToken types.Address) (Info, bool)
	StakingTokens() []types.Address
	Distributor(stakingToken types.Address) *Distributor
}

// Staking is the rewards factory. It deploys one distributor per staking token
// and funds it with the queued reward once genesis has passed.
type Staking struct {
	mu           sync.RWMutex
	factory      *factoryRecord
	dirtyFactory bool

	infos         map[types.Address]*Info
	stakingTokens []types.Address
	distributors  map[types.Address]*Distributor
	byAddress     map[types.Address]*Distributor
	dirtyInfos    map[types.Address]struct{}
	dirtyList     bool
	dirtyDists    map[types.Address]struct{}

	bus *bus.Bus
}

func New(bus *bus.Bus) *Staking {
	return &Staking{
		infos:        map[types.Address]*Info{},
		distributors: map[types.Address]*Distributor{},
		byAddress:    map[types.Address]*Distributor{},
		dirtyInfos:   map[types.Address]struct{}{},
		dirtyDists:   map[types.Address]struct{}{},
		bus:          bus,
	}
}

// Init binds the factory to its address, rewards token and genesis time.
func (s *Staking) Init(address, rewardsToken types.Address, genesis uint64, owner types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.factory != nil {
		return ErrorFactoryExists
	}

	s.factory = &factoryRecord{Address: address, RewardsToken: rewardsToken, Genesis: genesis, Owner: owner}
	s.dirtyFactory = true
	s.bus.Record("staking.init", func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.factory = nil
	})

	return nil
}

func (s *Staking) factoryData() (factoryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.factory == nil {
		return factoryRecord{}, false
	}
	return *s.factory, true
}

func (s *Staking) Address() types.Address {
	f, _ := s.factoryData()
	return f.Address
}

func (s *Staking) RewardsToken() types.Address {
	f, _ := s.factoryData()
	return f.RewardsToken
}

func (s *Staking) Genesis() uint64 {
	f, _ := s.factoryData()
	return f.Genesis
}

func (s *Staking) Owner() types.Address {
	f, _ := s.factoryData()
	return f.Owner
}

// DistributorAddress derives the handle of the distributor for stakingToken.
func DistributorAddress(factory, stakingToken types.Address) types.Address {
	return types.BytesToAddress(crypto.Keccak256(factory.Bytes(), stakingToken.Bytes())[12:])
}

// Deploy creates the distributor for stakingToken and queues rewardAmount to
// be paid out over duration seconds.
func (s *Staking) Deploy(sender, stakingToken types.Address, rewardAmount *uint256.Int, duration uint64) (*Distributor, error) {
	f, ok := s.factoryData()
	if !ok {
		return nil, ErrorFactoryNotDeployed
	}
	if sender != f.Owner {
		return nil, ErrorNotOwner
	}
	if duration == 0 {
		return nil, ErrorInvalidDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.infos[stakingToken]; exists {
		return nil, ErrorAlreadyDeployed
	}

	address := DistributorAddress(f.Address, stakingToken)
	distributor := s.addDistributor(stakingToken, newDistributor(s.bus, address, stakingToken, f.RewardsToken, f.Address, duration))
	s.infos[stakingToken] = &Info{StakingToken: stakingToken, Distributor: address, RewardAmount: new(uint256.Int).Set(rewardAmount), Duration: duration}
	s.stakingTokens = append(s.stakingTokens, stakingToken)
	s.dirtyInfos[stakingToken] = struct{}{}
	s.dirtyDists[stakingToken] = struct{}{}
	s.dirtyList = true
	distributor.dirty = true

	s.bus.Record("staking.deploy", func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.infos, stakingToken)
		delete(s.distributors, stakingToken)
		delete(s.byAddress, address)
		s.stakingTokens = s.stakingTokens[:len(s.stakingTokens)-1]
	})
	s.bus.Logger().Debug("rewards pool deployed", "distributor", address.String(), "staking_token", stakingToken.String(), "reward", rewardAmount.Dec(), "duration", duration)

	return distributor, nil
}

func (s *Staking) addDistributor(stakingToken types.Address, distributor *Distributor) *Distributor {
	distributor.markDirty = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.dirtyDists[stakingToken] = struct{}{}
	}
	s.distributors[stakingToken] = distributor
	s.byAddress[distributor.address] = distributor
	return distributor
}

// NotifyRewardAmounts funds every pool with a queued reward.
func (s *Staking) NotifyRewardAmounts() error {
	f, ok := s.factoryData()
	if !ok {
		return ErrorFactoryNotDeployed
	}
	if s.bus.BlockTime() < f.Genesis {
		return ErrorNotReadyToDeploy
	}

	tokens := s.StakingTokens()
	if len(tokens) == 0 {
		return ErrorNoDeploys
	}
	for _, token := range tokens {
		if err := s.NotifyRewardAmount(token); err != nil {
			return fmt.Errorf("notify %s: %w", token.String(), err)
		}
	}

	return nil
}

// NotifyRewardAmount transfers the queued reward of stakingToken to its
// distributor and starts the reward period. A pool with nothing queued is
// left untouched.
func (s *Staking) NotifyRewardAmount(stakingToken types.Address) error {
	f, ok := s.factoryData()
	if !ok {
		return ErrorFactoryNotDeployed
	}
	if s.bus.BlockTime() < f.Genesis {
		return ErrorNotReadyToDeploy
	}

	s.mu.Lock()
	info, ok := s.infos[stakingToken]
	if !ok {
		s.mu.Unlock()
		return ErrorNotDeployed
	}
	reward := info.RewardAmount
	if reward.IsZero() {
		s.mu.Unlock()
		return nil
	}
	info.RewardAmount = new(uint256.Int)
	s.dirtyInfos[stakingToken] = struct{}{}
	distributor := s.distributors[stakingToken]
	s.mu.Unlock()

	s.bus.Record("staking.notify", func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		info.RewardAmount = reward
	})

	if err := s.bus.Assets().Transfer(f.RewardsToken, f.Address, distributor.address, reward); err != nil {
		return err
	}
	return distributor.NotifyRewardAmount(f.Address, reward)
}

func (s *Staking) Info(stakingToken types.Address) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.infos[stakingToken]
	if !ok {
		return Info{}, false
	}
	return Info{
		StakingToken: info.StakingToken,
		Distributor:  info.Distributor,
		RewardAmount: new(uint256.Int).Set(info.RewardAmount),
		Duration:     info.Duration,
	}, true
}

// StakingTokens returns the staking tokens in deployment order.
func (s *Staking) StakingTokens() []types.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]types.Address(nil), s.stakingTokens...)
}

func (s *Staking) Distributor(stakingToken types.Address) *Distributor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.distributors[stakingToken]
}

func (s *Staking) DistributorByAddress(address types.Address) *Distributor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.byAddress[address]
}

func sortedKeys(set map[types.Address]struct{}) []types.Address {
	keys := make([]types.Address, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}

func (s *Staking) Commit(db tree.MTree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirtyFactory && s.factory != nil {
		data, err := rlp.EncodeToBytes(s.factory)
		if err != nil {
			return err
		}
		db.Set([]byte{mainPrefix, factoryPrefix}, data)
	}
	s.dirtyFactory = false

	for _, token := range sortedKeys(s.dirtyInfos) {
		path := append([]byte{mainPrefix, infoPrefix}, token.Bytes()...)
		info, ok := s.infos[token]
		if !ok {
			db.Remove(path)
			continue
		}
		data, err := rlp.EncodeToBytes(&infoRecord{
			StakingToken: info.StakingToken,
			Distributor:  info.Distributor,
			RewardAmount: info.RewardAmount.ToBig(),
			Duration:     info.Duration,
		})
		if err != nil {
			return fmt.Errorf("can't encode rewards pool %s: %v", token.String(), err)
		}
		db.Set(path, data)
	}
	s.dirtyInfos = map[types.Address]struct{}{}

	if s.dirtyList {
		data, err := rlp.EncodeToBytes(s.stakingTokens)
		if err != nil {
			return err
		}
		db.Set([]byte{mainPrefix, listPrefix}, data)
		s.dirtyList = false
	}

	for _, token := range sortedKeys(s.dirtyDists) {
		distributor, ok := s.distributors[token]
		if !ok {
			continue
		}
		periodDirty, accounts := distributor.takeDirty()
		if periodDirty {
			data, err := rlp.EncodeToBytes(distributor.record())
			if err != nil {
				return fmt.Errorf("can't encode distributor %s: %v", distributor.address.String(), err)
			}
			db.Set(append([]byte{mainPrefix, distributorPrefix}, distributor.address.Bytes()...), data)
		}
		for _, account := range accounts {
			path := append(append([]byte{mainPrefix, accountPrefix}, distributor.address.Bytes()...), account.Bytes()...)
			stake := distributor.stake(account)
			if stake.isEmpty() {
				db.Remove(path)
				continue
			}
			data, err := rlp.EncodeToBytes(stake.record())
			if err != nil {
				return err
			}
			db.Set(path, data)
		}
	}
	s.dirtyDists = map[types.Address]struct{}{}

	return nil
}

func (s *Staking) Load(db tree.ReadOnlyTree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, data := db.Get([]byte{mainPrefix, factoryPrefix}); len(data) != 0 {
		factory := new(factoryRecord)
		if err := rlp.DecodeBytes(data, factory); err != nil {
			return fmt.Errorf("failed to decode rewards factory: %v", err)
		}
		s.factory = factory
	}

	if _, data := db.Get([]byte{mainPrefix, listPrefix}); len(data) != 0 {
		if err := rlp.DecodeBytes(data, &s.stakingTokens); err != nil {
			return fmt.Errorf("failed to decode staking tokens: %v", err)
		}
	}

	for _, token := range s.stakingTokens {
		_, data := db.Get(append([]byte{mainPrefix, infoPrefix}, token.Bytes()...))
		r := new(infoRecord)
		if err := rlp.DecodeBytes(data, r); err != nil {
			return fmt.Errorf("failed to decode rewards pool %s: %v", token.String(), err)
		}
		s.infos[token] = &Info{StakingToken: r.StakingToken, Distributor: r.Distributor, RewardAmount: uint256.MustFromBig(r.RewardAmount), Duration: r.Duration}

		_, data = db.Get(append([]byte{mainPrefix, distributorPrefix}, r.Distributor.Bytes()...))
		pr := new(periodRecord)
		if err := rlp.DecodeBytes(data, pr); err != nil {
			return fmt.Errorf("failed to decode distributor %s: %v", r.Distributor.String(), err)
		}
		distributor := s.addDistributor(token, newDistributor(s.bus, r.Distributor, pr.StakingToken, pr.RewardsToken, pr.RewardsDistribution, pr.RewardsDuration))
		distributor.load(pr)

		prefix := append([]byte{mainPrefix, accountPrefix}, r.Distributor.Bytes()...)
		var err error
		db.IteratePrefix(prefix, func(key []byte, value []byte) bool {
			sr := new(stakeRecord)
			if err = rlp.DecodeBytes(value, sr); err != nil {
				return true
			}
			distributor.stakes[types.BytesToAddress(key[len(prefix):])] = sr.stake()
			return false
		})
		if err != nil {
			return fmt.Errorf("failed to decode stakes of %s: %v", r.Distributor.String(), err)
		}
	}

	return nil
}

func (s *Staking) Export(state *types.AppState) {
	rewardsToken := s.RewardsToken()
	for _, token := range s.StakingTokens() {
		info, _ := s.Info(token)
		distributor := s.Distributor(token)
		p := distributor.snapshot()
		state.RewardsPools = append(state.RewardsPools, types.RewardsPool{
			StakingToken:         token,
			Distributor:          info.Distributor,
			RewardsToken:         rewardsToken,
			PendingRewardAmount:  info.RewardAmount.Dec(),
			Duration:             info.Duration,
			RewardRate:           p.RewardRate.Dec(),
			PeriodFinish:         p.PeriodFinish,
			LastUpdateTime:       p.LastUpdateTime,
			RewardPerTokenStored: p.RewardPerTokenStored.Dec(),
			TotalStaked:          p.TotalSupply.Dec(),
		})
	}
}
