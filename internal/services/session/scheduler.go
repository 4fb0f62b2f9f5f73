package session

import (
	"sync"
	"time"

	"github.com/comus-party/justeprix/internal/model"
)

// Scheduler tracks delayed tasks keyed by session id so that session
// teardown can cancel anything still pending. A task that races a
// cancellation may still fire; tasks re-check that their session exists
// before acting, so a late fire is a no-op rather than a stale mutation.
type Scheduler struct {
	mu     sync.Mutex
	nextID int
	timers map[model.SessionID]map[int]*time.Timer
}

// NewScheduler creates an empty Scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[model.SessionID]map[int]*time.Timer),
	}
}

// After runs fn once after the delay, tracked under the session id.
// A zero or negative delay still runs fn asynchronously, never inline.
func (s *Scheduler) After(id model.SessionID, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	taskID := s.nextID

	timer := time.AfterFunc(d, func() {
		s.remove(id, taskID)
		fn()
	})

	if s.timers[id] == nil {
		s.timers[id] = make(map[int]*time.Timer)
	}
	s.timers[id][taskID] = timer
}

// CancelSession stops every pending task for the session
func (s *Scheduler) CancelSession(id model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, timer := range s.timers[id] {
		timer.Stop()
	}
	delete(s.timers, id)
}

// Pending returns the number of tracked tasks for the session
func (s *Scheduler) Pending(id model.SessionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[id])
}

func (s *Scheduler) remove(id model.SessionID, taskID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tasks, ok := s.timers[id]; ok {
		delete(tasks, taskID)
		if len(tasks) == 0 {
			delete(s.timers, id)
		}
	}
}
