package cart

import (
	"sync"
	"time"
)

// Timer is a cancellable deferred call
type Timer interface {
	// Stop cancels the timer. It reports whether the call was prevented
	// from running.
	Stop() bool
}

// Clock creates timers. The real implementation delegates to the time
// package; tests substitute a virtual clock and advance it manually.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is the production Clock backed by time.AfterFunc
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DefaultFlushInterval is the quiet period used when none is configured
const DefaultFlushInterval = 800 * time.Millisecond

// SyncScheduler coalesces cart mutations into a single deferred
// write-through. Every call to Schedule cancels the pending write and arms
// a new one after the quiet interval, so only the final state of a burst
// of mutations is persisted (trailing-edge debounce).
type SyncScheduler struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	pending  Timer
}

// NewSyncScheduler creates a scheduler with the given quiet interval.
// A non-positive interval falls back to DefaultFlushInterval.
func NewSyncScheduler(interval time.Duration, clock Clock) *SyncScheduler {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &SyncScheduler{
		clock:    clock,
		interval: interval,
	}
}

// Schedule arms a deferred call to flush, cancelling any pending one
func (s *SyncScheduler) Schedule(flush func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = s.clock.AfterFunc(s.interval, func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		flush()
	})
}

// Cancel drops the pending deferred write, if any
func (s *SyncScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// HasPending reports whether a deferred write is armed
func (s *SyncScheduler) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Interval returns the configured quiet interval
func (s *SyncScheduler) Interval() time.Duration {
	return s.interval
}
