package events

import (
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/types"
	db "github.com/tendermint/tm-db"
)

func TestIEventsDB(t *testing.T) {
	store := NewEventsStore(db.NewMemDB())

	{
		event := &TransferEvent{
			Asset:  types.HexToAddress("Mx04bea23efb744dc93b4fda4c20bf4a21c6e195f1"),
			From:   types.HexToAddress("Mx18467bbb64a8edf890201d526c35957d82be3d95"),
			To:     types.HexToAddress("Mx18467bbb64a8edf890201d526c35957d82be3d91"),
			Amount: "111497225000000000000",
		}
		store.AddEvent(event)
	}
	{
		event := &PairCreatedEvent{
			Token0: types.HexToAddress("Mx04bea23efb744dc93b4fda4c20bf4a21c6e195f1"),
			Token1: types.HexToAddress("Mx18467bbb64a8edf890201d526c35957d82be3d95"),
			Pair:   types.HexToAddress("Mx738da41ba6a7b7d69b7294afa158b89c5a1b410c"),
			Index:  1,
		}
		store.AddEvent(event)
	}
	err := store.CommitEvents(12)
	if err != nil {
		t.Fatal(err)
	}

	{
		event := &SwapEvent{
			Pair:       types.HexToAddress("Mx738da41ba6a7b7d69b7294afa158b89c5a1b410c"),
			Sender:     types.HexToAddress("Mx18467bbb64a8edf890201d526c35957d82be3d92"),
			Amount0In:  "1000",
			Amount1In:  "0",
			Amount0Out: "0",
			Amount1Out: "996",
			To:         types.HexToAddress("Mx18467bbb64a8edf890201d526c35957d82be3d92"),
		}
		store.AddEvent(event)
	}
	err = store.CommitEvents(14)
	if err != nil {
		t.Fatal(err)
	}

	loadEvents := store.LoadEvents(12)

	if len(loadEvents) != 2 {
		t.Fatalf("count of events not equal 2, got %d", len(loadEvents))
	}

	if loadEvents[0].Type() != TypeTransferEvent {
		t.Fatal("invalid event type")
	}
	if loadEvents[0].(*TransferEvent).Amount != "111497225000000000000" {
		t.Fatal("invalid Amount")
	}
	if loadEvents[0].(*TransferEvent).From.String() != "Mx18467bbb64a8edf890201d526c35957d82be3d95" {
		t.Fatal("invalid From")
	}

	if loadEvents[1].Type() != TypePairCreatedEvent {
		t.Fatal("invalid event type")
	}
	if loadEvents[1].(*PairCreatedEvent).Index != 1 {
		t.Fatal("invalid Index")
	}

	loadEvents = store.LoadEvents(14)
	if len(loadEvents) != 1 {
		t.Fatalf("count of events not equal 1, got %d", len(loadEvents))
	}
	if loadEvents[0].(*SwapEvent).Amount1Out != "996" {
		t.Fatal("invalid Amount1Out")
	}

	if len(store.LoadEvents(13)) != 0 {
		t.Fatal("expected no events at height 13")
	}
}

func TestEventsTruncate(t *testing.T) {
	store := NewEventsStore(db.NewMemDB())
	store.AddEvent(&SyncEvent{Reserve0: "1", Reserve1: "1"})
	n := store.Pending()
	store.AddEvent(&SyncEvent{Reserve0: "2", Reserve1: "2"})
	store.AddEvent(&SyncEvent{Reserve0: "3", Reserve1: "3"})

	store.Truncate(n)
	if store.Pending() != 1 {
		t.Fatalf("want 1 pending event, got %d", store.Pending())
	}
	if store.PendingEvents()[0].(*SyncEvent).Reserve0 != "1" {
		t.Fatal("wrong event kept")
	}
}
