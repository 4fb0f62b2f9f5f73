package session

import (
	"sync"

	"github.com/comus-party/justeprix/internal/model"
)

// sessionLocks hands out one mutex per session id. All mutation of a
// session's state goes through its lock, which is what makes the
// round-active check-and-flip atomic: exactly one winning guess can
// observe an active round, even under true parallelism.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[model.SessionID]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[model.SessionID]*sync.Mutex),
	}
}

func (l *sessionLocks) lockFor(id model.SessionID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.locks[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.locks[id] = m
	return m
}

func (l *sessionLocks) drop(id model.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, id)
}
