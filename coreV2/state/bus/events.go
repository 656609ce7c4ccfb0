package bus

import "github.com/MinterTeam/minter-swap/coreV2/events"

type Events interface {
	AddEvent(event events.Event)
}

type Journal interface {
	Append(name string, undo func())
}

type Clock interface {
	BlockTime() uint64
}
