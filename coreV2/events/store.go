package events

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"
	db "github.com/tendermint/tm-db"
)

func init() {
	tmjson.RegisterType(&TransferEvent{}, TypeTransferEvent)
	tmjson.RegisterType(&ApprovalEvent{}, TypeApprovalEvent)
	tmjson.RegisterType(&DepositEvent{}, TypeDepositEvent)
	tmjson.RegisterType(&WithdrawalEvent{}, TypeWithdrawalEvent)
	tmjson.RegisterType(&PairCreatedEvent{}, TypePairCreatedEvent)
	tmjson.RegisterType(&MintEvent{}, TypeMintEvent)
	tmjson.RegisterType(&BurnEvent{}, TypeBurnEvent)
	tmjson.RegisterType(&SwapEvent{}, TypeSwapEvent)
	tmjson.RegisterType(&SyncEvent{}, TypeSyncEvent)
	tmjson.RegisterType(&ExchangeCreatedEvent{}, TypeExchangeCreatedEvent)
	tmjson.RegisterType(&AddLiquidityEvent{}, TypeAddLiquidityEvent)
	tmjson.RegisterType(&RemoveLiquidityEvent{}, TypeRemoveLiquidityEvent)
	tmjson.RegisterType(&TokenPurchaseEvent{}, TypeTokenPurchaseEvent)
	tmjson.RegisterType(&NativePurchaseEvent{}, TypeNativePurchaseEvent)
	tmjson.RegisterType(&StakedEvent{}, TypeStakedEvent)
	tmjson.RegisterType(&WithdrawnEvent{}, TypeWithdrawnEvent)
	tmjson.RegisterType(&RewardPaidEvent{}, TypeRewardPaidEvent)
	tmjson.RegisterType(&RewardAddedEvent{}, TypeRewardAddedEvent)
	tmjson.RegisterType(&MigrateEvent{}, TypeMigrateEvent)
}

// IEventsDB is an interface of Events
type IEventsDB interface {
	AddEvent(event Event)
	LoadEvents(height uint64) Events
	CommitEvents(height uint64) error
}

type Store struct {
	db      db.DB
	pending Events

	sync.RWMutex
}

// NewEventsStore creates new events store in given DB
func NewEventsStore(db db.DB) *Store {
	return &Store{db: db}
}

// AddEvent queues an event for the next commit.
func (store *Store) AddEvent(event Event) {
	store.Lock()
	defer store.Unlock()

	store.pending = append(store.pending, event)
}

// Pending returns the number of uncommitted events.
func (store *Store) Pending() int {
	store.RLock()
	defer store.RUnlock()

	return len(store.pending)
}

// PendingEvents returns a copy of uncommitted events.
func (store *Store) PendingEvents() Events {
	store.RLock()
	defer store.RUnlock()

	return append(Events(nil), store.pending...)
}

// Truncate drops uncommitted events past n. Used to revert a failed call.
func (store *Store) Truncate(n int) {
	store.Lock()
	defer store.Unlock()

	if n < len(store.pending) {
		store.pending = store.pending[:n]
	}
}

// CommitEvents writes uncommitted events under height and clears the queue.
func (store *Store) CommitEvents(height uint64) error {
	store.Lock()
	defer store.Unlock()

	if len(store.pending) == 0 {
		return nil
	}

	bytes, err := tmjson.Marshal(store.pending)
	if err != nil {
		return errors.Wrapf(err, "encode events at height %d", height)
	}

	if err := store.db.Set(uint64ToBytes(height), bytes); err != nil {
		return errors.Wrapf(err, "store events at height %d", height)
	}

	store.pending = nil
	return nil
}

// LoadEvents returns events committed under height.
func (store *Store) LoadEvents(height uint64) Events {
	store.RLock()
	defer store.RUnlock()

	bytes, err := store.db.Get(uint64ToBytes(height))
	if err != nil {
		panic(err)
	}
	if len(bytes) == 0 {
		return Events{}
	}

	var items Events
	if err := tmjson.Unmarshal(bytes, &items); err != nil {
		panic(err)
	}

	return items
}

func uint64ToBytes(height uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, height)
	return b
}
