// Package bus connects state modules. Modules register themselves here and
// reach each other only through the narrow interfaces below, by address.
package bus

import (
	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/tendermint/tendermint/libs/log"
)

type Bus struct {
	assets  Assets
	checker Checker
	events  Events
	journal Journal
	clock   Clock

	logger log.Logger
}

func NewBus() *Bus {
	return &Bus{logger: log.NewNopLogger()}
}

func (b *Bus) SetAssets(assets Assets) {
	b.assets = assets
}

func (b *Bus) Assets() Assets {
	return b.assets
}

func (b *Bus) SetChecker(checker Checker) {
	b.checker = checker
}

func (b *Bus) Checker() Checker {
	return b.checker
}

func (b *Bus) SetEvents(events Events) {
	b.events = events
}

// AddEvent forwards to the events sink when one is set.
func (b *Bus) AddEvent(event events.Event) {
	if b.events == nil {
		return
	}
	b.events.AddEvent(event)
}

func (b *Bus) SetJournal(journal Journal) {
	b.journal = journal
}

// Record appends an undo operation to the journal when one is set.
func (b *Bus) Record(name string, undo func()) {
	if b.journal == nil {
		return
	}
	b.journal.Append(name, undo)
}

func (b *Bus) SetClock(clock Clock) {
	b.clock = clock
}

// BlockTime returns the current block timestamp in seconds.
func (b *Bus) BlockTime() uint64 {
	if b.clock == nil {
		return 0
	}
	return b.clock.BlockTime()
}

func (b *Bus) SetLogger(logger log.Logger) {
	b.logger = logger
}

func (b *Bus) Logger() log.Logger {
	return b.logger
}
