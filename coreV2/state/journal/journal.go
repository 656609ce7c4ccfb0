// Package journal records undo operations for every state mutation so that a
// failed call can be reverted to the last restore point.
package journal

import "sync"

const defaultOps = 16

type op struct {
	name string
	undo func()
}

type Journal struct {
	ops []op

	lock sync.Mutex
}

func New() *Journal {
	return &Journal{ops: make([]op, 0, defaultOps)}
}

// Append records how to revert a mutation that has just been applied.
func (j *Journal) Append(name string, undo func()) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.ops = append(j.ops, op{name: name, undo: undo})
}

// OpIndex returns the number of operations recorded so far. The value is a
// restore point for Rollback.
func (j *Journal) OpIndex() int {
	j.lock.Lock()
	defer j.lock.Unlock()

	return len(j.ops)
}

// Rollback undoes operations in reverse order down to restorePoint.
func (j *Journal) Rollback(restorePoint int) []string {
	j.lock.Lock()
	ops := j.ops[restorePoint:]
	j.ops = j.ops[:restorePoint]
	j.lock.Unlock()

	reverted := make([]string, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		ops[i].undo()
		reverted = append(reverted, ops[i].name)
	}

	return reverted
}

// Reset forgets every recorded operation. Called once a call has committed.
func (j *Journal) Reset() {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.ops = j.ops[:0]
}
