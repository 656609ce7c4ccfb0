package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state/assets"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/checker"
	"github.com/MinterTeam/minter-swap/coreV2/state/exchange"
	"github.com/MinterTeam/minter-swap/coreV2/state/journal"
	"github.com/MinterTeam/minter-swap/coreV2/state/staking"
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/MinterTeam/minter-swap/coreV2/statistics"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/tree"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	pkgerrors "github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	db "github.com/tendermint/tm-db"
)

const mainPrefix = byte('m')

const (
	blockTimePrefix = 't'
	noncePrefix     = 'n'
)

var ErrorTimeBackwards = errors.New("BLOCK_TIME_BACKWARDS")

// CheckState is the read-only view of a State used by queries.
type CheckState struct {
	state *State
}

func NewCheckState(state *State) *CheckState {
	return &CheckState{state: state}
}

func (cs *CheckState) Export() types.AppState {
	return cs.state.Export()
}

func (cs *CheckState) Assets() assets.RAssets {
	return cs.state.Assets
}

func (cs *CheckState) Swap() swap.RSwap {
	return cs.state.Swap
}

func (cs *CheckState) Exchanges() exchange.RExchanges {
	return cs.state.Exchanges
}

func (cs *CheckState) Staking() staking.RStaking {
	return cs.state.Staking
}

func (cs *CheckState) BlockTime() uint64 {
	return cs.state.BlockTime()
}

func (cs *CheckState) Height() int64 {
	return cs.state.Height()
}

// State composes every module over one bus and one journal. Calls that change
// it go through Exec.
type State struct {
	Assets    *assets.Assets
	Swap      *swap.Swap
	Exchanges *exchange.Exchanges
	Staking   *staking.Staking
	Checker   *checker.Checker
	Journal   *journal.Journal

	db             db.DB
	events         *events.Store
	tree           tree.MTree
	keepLastStates int64
	stats          *statistics.Data

	bus  *bus.Bus
	lock sync.Mutex

	muMeta     sync.RWMutex
	height     int64
	blockTime  uint64
	nonces     map[types.Address]uint64
	dirtyMeta  bool
	dirtyNonce map[types.Address]struct{}
}

// NewState opens the state tree stored in stateDB at height (0 for the latest
// version) and loads every module from it.
func NewState(height uint64, stateDB db.DB, eventsStore *events.Store, cacheSize int, keepLastStates int64) (*State, error) {
	iavlTree, err := tree.NewMutableTree(height, stateDB, cacheSize)
	if err != nil {
		return nil, err
	}

	state := newStateForTree(iavlTree, eventsStore, stateDB, keepLastStates)
	if err := state.load(iavlTree); err != nil {
		return nil, err
	}

	return state, nil
}

func newStateForTree(mutableTree tree.MTree, eventsStore *events.Store, stateDB db.DB, keepLastStates int64) *State {
	stateBus := bus.NewBus()
	stateJournal := journal.New()
	stateBus.SetJournal(stateJournal)
	if eventsStore != nil {
		stateBus.SetEvents(eventsStore)
	}

	state := &State{
		Checker:   checker.NewChecker(stateBus),
		Journal:   stateJournal,
		Assets:    assets.NewAssets(stateBus),
		Swap:      swap.New(stateBus),
		Exchanges: exchange.NewExchanges(stateBus),
		Staking:   staking.New(stateBus),

		db:             stateDB,
		events:         eventsStore,
		tree:           mutableTree,
		keepLastStates: keepLastStates,
		bus:            stateBus,
		height:         mutableTree.Version(),
		nonces:         map[types.Address]uint64{},
		dirtyNonce:     map[types.Address]struct{}{},
	}
	stateBus.SetClock(state)

	return state
}

// CheckStateAtHeight returns a read-only view of the committed version
// height. Height 0 is the live state.
func (s *State) CheckStateAtHeight(height uint64) (*CheckState, error) {
	if height == 0 {
		return NewCheckState(s), nil
	}

	immutable, err := s.tree.GetImmutableAtHeight(int64(height))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "height %d", height)
	}

	historic := newStateForTree(s.tree, nil, s.db, 0)
	historic.height = int64(height)
	if err := historic.load(immutable); err != nil {
		return nil, err
	}
	return NewCheckState(historic), nil
}

func (s *State) load(db tree.ReadOnlyTree) error {
	if err := s.Assets.Load(db); err != nil {
		return pkgerrors.Wrap(err, "load assets")
	}
	if err := s.Swap.Load(db); err != nil {
		return pkgerrors.Wrap(err, "load swap")
	}
	if err := s.Exchanges.Load(db); err != nil {
		return pkgerrors.Wrap(err, "load exchanges")
	}
	if err := s.Staking.Load(db); err != nil {
		return pkgerrors.Wrap(err, "load staking")
	}

	s.muMeta.Lock()
	defer s.muMeta.Unlock()

	if _, data := db.Get([]byte{mainPrefix, blockTimePrefix}); len(data) == 8 {
		s.blockTime = binary.BigEndian.Uint64(data)
	}
	db.IteratePrefix([]byte{mainPrefix, noncePrefix}, func(key []byte, value []byte) bool {
		s.nonces[types.BytesToAddress(key[2:])] = binary.BigEndian.Uint64(value)
		return false
	})

	return nil
}

func (s *State) SetLogger(logger log.Logger) {
	s.bus.SetLogger(logger)
}

func (s *State) Logger() log.Logger {
	return s.bus.Logger()
}

func (s *State) SetStatistics(stats *statistics.Data) {
	s.stats = stats
}

// Bus returns the bus the modules of the state are wired through.
func (s *State) Bus() *bus.Bus {
	return s.bus
}

func (s *State) Tree() tree.MTree {
	return s.tree
}

func (s *State) Events() *events.Store {
	return s.events
}

func (s *State) Height() int64 {
	s.muMeta.RLock()
	defer s.muMeta.RUnlock()

	return s.height
}

// BlockTime returns the current block timestamp in seconds.
func (s *State) BlockTime() uint64 {
	s.muMeta.RLock()
	defer s.muMeta.RUnlock()

	return s.blockTime
}

// SetBlockTime advances the block timestamp. Time never goes back.
func (s *State) SetBlockTime(blockTime uint64) error {
	s.muMeta.Lock()
	defer s.muMeta.Unlock()

	if blockTime < s.blockTime {
		return ErrorTimeBackwards
	}
	s.blockTime = blockTime
	s.dirtyMeta = true

	return nil
}

// Exec runs fn as one atomic call. When fn or the balance check fails every
// mutation and event of the call is reverted.
func (s *State) Exec(fn func() error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	restore := s.Journal.OpIndex()
	pending := 0
	if s.events != nil {
		pending = s.events.Pending()
	}

	err := fn()
	if err == nil {
		err = s.Checker.Check()
	}
	s.stats.CountExec(err)

	if err != nil {
		reverted := s.Journal.Rollback(restore)
		if s.events != nil {
			s.events.Truncate(pending)
		}
		s.Checker.Reset()
		s.bus.Logger().Debug("call reverted", "err", err, "ops", len(reverted))
		return err
	}

	s.Journal.Reset()
	s.Checker.Reset()

	return nil
}

// Deploy returns the next contract handle of deployer, derived from the
// deployer address and its deployment nonce.
func (s *State) Deploy(deployer types.Address) types.Address {
	s.muMeta.Lock()
	defer s.muMeta.Unlock()

	nonce := s.nonces[deployer]
	s.nonces[deployer] = nonce + 1
	s.dirtyNonce[deployer] = struct{}{}
	s.bus.Record("state.deploy", func() {
		s.muMeta.Lock()
		defer s.muMeta.Unlock()
		s.nonces[deployer] = nonce
	})

	return CreateAddress(deployer, nonce)
}

// CreateAddress derives the handle of the nonce-th contract of deployer.
func CreateAddress(deployer types.Address, nonce uint64) types.Address {
	data, _ := rlp.EncodeToBytes([]interface{}{deployer, nonce})
	return types.BytesToAddress(crypto.Keccak256(data)[12:])
}

func (s *State) Nonce(deployer types.Address) uint64 {
	s.muMeta.RLock()
	defer s.muMeta.RUnlock()

	return s.nonces[deployer]
}

func (s *State) commitMeta() {
	s.muMeta.Lock()
	defer s.muMeta.Unlock()

	if s.dirtyMeta {
		s.tree.Set([]byte{mainPrefix, blockTimePrefix}, uint64ToBytes(s.blockTime))
		s.dirtyMeta = false
	}

	deployers := make([]types.Address, 0, len(s.dirtyNonce))
	for deployer := range s.dirtyNonce {
		deployers = append(deployers, deployer)
	}
	sort.Slice(deployers, func(i, j int) bool { return deployers[i].Compare(deployers[j]) < 0 })
	for _, deployer := range deployers {
		s.tree.Set(append([]byte{mainPrefix, noncePrefix}, deployer.Bytes()...), uint64ToBytes(s.nonces[deployer]))
	}
	s.dirtyNonce = map[types.Address]struct{}{}
}

// Commit writes every module into the tree, saves a new version and flushes
// the events of the version.
func (s *State) Commit() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	started := time.Now()
	s.Checker.Reset()
	s.Journal.Reset()

	if err := s.Assets.Commit(s.tree); err != nil {
		return nil, pkgerrors.Wrap(err, "commit assets")
	}
	if err := s.Swap.Commit(s.tree); err != nil {
		return nil, pkgerrors.Wrap(err, "commit swap")
	}
	if err := s.Exchanges.Commit(s.tree); err != nil {
		return nil, pkgerrors.Wrap(err, "commit exchanges")
	}
	if err := s.Staking.Commit(s.tree); err != nil {
		return nil, pkgerrors.Wrap(err, "commit staking")
	}
	s.commitMeta()

	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return hash, err
	}

	if s.events != nil {
		if err := s.events.CommitEvents(uint64(version)); err != nil {
			return hash, pkgerrors.Wrapf(err, "commit events of %d", version)
		}
	}

	s.muMeta.Lock()
	s.height = version
	blockTime := s.blockTime
	s.muMeta.Unlock()

	if s.keepLastStates > 0 {
		if versionToDelete := version - s.keepLastStates - 1; versionToDelete > 0 {
			if err := s.tree.DeleteVersionIfExists(versionToDelete); err != nil {
				s.bus.Logger().Error("delete version", "version", versionToDelete, "err", err)
			}
		}
	}

	s.stats.SetCommit(uint64(version), blockTime, started)
	s.stats.SetPools(s.Swap.AllPairsLength(), len(s.Staking.StakingTokens()))
	s.bus.Logger().Info("state committed", "height", version, "hash", fmt.Sprintf("%X", hash))

	return hash, nil
}

func (s *State) Export() types.AppState {
	appState := types.AppState{BlockTime: s.BlockTime()}
	s.Assets.Export(&appState)
	s.Swap.Export(&appState)
	s.Exchanges.Export(&appState)
	s.Staking.Export(&appState)

	return appState
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
