package cmd

import (
	"io"

	"github.com/MinterTeam/minter-swap/coreV2/appdb"
	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state"
	"github.com/MinterTeam/minter-swap/log"
	"github.com/pkg/errors"
	"github.com/tendermint/tm-db"
)

const (
	stateDBName  = "state"
	eventsDBName = "events"
)

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openState opens the app, state and events databases of the configured home
// and loads the state at height, the latest one for 0.
func openState(height uint64, logger log.Logger) (*state.State, *appdb.AppDB, io.Closer, error) {
	var opened closers

	appDB, err := appdb.NewAppDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	opened = append(opened, appDB)

	var dbs [2]db.DB
	for i, name := range []string{stateDBName, eventsDBName} {
		if dbs[i], err = appdb.OpenDB(name, cfg); err != nil {
			_ = opened.Close()
			return nil, nil, nil, err
		}
		opened = append(opened, dbs[i])
	}

	s, err := state.NewState(height, dbs[0], events.NewEventsStore(dbs[1]), cfg.StateCacheSize, cfg.KeepLastStates)
	if err != nil {
		_ = opened.Close()
		return nil, nil, nil, errors.Wrapf(err, "load state at height %d", height)
	}
	s.SetLogger(logger.With("module", "state"))

	return s, appDB, opened, nil
}
