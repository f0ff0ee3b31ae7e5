package suggest

import (
	"sync"
	"time"
)

// Scheduler collapses a burst of triggers into a single delayed invocation.
// Each Schedule call cancels any armed, not-yet-fired invocation and re-arms
// the timer, so only the most recent call within the window fires. Instances
// are independent; never share one between concerns with different delays.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewScheduler creates a Scheduler with a fixed delay.
func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Schedule arms (or re-arms) the timer to run fn after the delay.
// fn runs on the timer goroutine; at most one invocation from this scheduler
// is ever pending.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Armed reports whether an invocation is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Cancel disarms any pending invocation. The scheduler stays usable.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Stop cancels any pending invocation and rejects further Schedule calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
