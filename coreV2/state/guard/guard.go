// Package guard provides the single in-flight call lock used by pairs and
// reward distributors.
package guard

import (
	"errors"
	"sync"
)

var ErrorLocked = errors.New("LOCKED")

type Guard struct {
	mu     sync.Mutex
	locked bool
}

// Acquire marks the entity busy. The returned release must be deferred by the
// caller; a nested Acquire before release fails with ErrorLocked.
func (g *Guard) Acquire() (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locked {
		return nil, ErrorLocked
	}
	g.locked = true

	return func() {
		g.mu.Lock()
		g.locked = false
		g.mu.Unlock()
	}, nil
}

func (g *Guard) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.locked
}
