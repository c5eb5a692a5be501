// Package debounce delays a callback until input has been quiet for a fixed
// interval.
package debounce

import (
	"sync"
	"time"
)

// Scheduler runs at most one pending callback. Scheduling again before the
// timer fires replaces the pending callback and restarts the delay.
// A Scheduler is safe for concurrent use.
type Scheduler struct {
	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
}

// New creates an idle scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Schedule arms a timer that runs fn after delay, cancelling any callback
// that is still pending.
func (s *Scheduler) Schedule(fn func(), delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A cancel or reschedule that raced with this fire wins.
		if gen != s.generation {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending callback, if any. fn will not run after Cancel
// returns unless it had already started.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.generation++
}

// Pending reports whether a callback is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
