package services

import "sync"

// TableLocks serializes mutations that touch a table's seat count. Joins,
// kicks, capacity edits and deactivation cascades for the same table take the
// same lock; operations on different tables proceed independently. Shared
// between the table registry and the registration ledger.
type TableLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewTableLocks() *TableLocks {
	return &TableLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *TableLocks) Lock(tableID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[tableID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tableID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
