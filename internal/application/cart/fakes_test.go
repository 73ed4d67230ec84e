package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
)

// manualClock is a virtual clock; timers fire when Advance crosses their
// deadline, synchronously on the advancing goroutine
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{}
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fakeLocalStore is an in-memory LocalStore recording save calls
type fakeLocalStore struct {
	mu        sync.Mutex
	snapshots map[string][]cart.LineItem
	saveCalls int
}

func newFakeLocalStore() *fakeLocalStore {
	return &fakeLocalStore{snapshots: make(map[string][]cart.LineItem)}
}

func (s *fakeLocalStore) Load(_ context.Context, sessionID string) []cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.CloneItems(s.snapshots[sessionID])
}

func (s *fakeLocalStore) Save(_ context.Context, sessionID string, items []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	s.snapshots[sessionID] = cart.CloneItems(items)
	return nil
}

func (s *fakeLocalStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

func (s *fakeLocalStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCalls
}

// fakeRemoteStore is an in-memory RemoteStore with row semantics and
// injectable failures
type fakeRemoteStore struct {
	mu             sync.Mutex
	rows           map[uuid.UUID]map[cart.IdentityKey]cart.LineItem
	upsertCalls    int
	reconcileCalls int
	loadErr        error
	upsertErr      error
}

func newFakeRemoteStore() *fakeRemoteStore {
	return &fakeRemoteStore{rows: make(map[uuid.UUID]map[cart.IdentityKey]cart.LineItem)}
}

func (s *fakeRemoteStore) Load(_ context.Context, accountID uuid.UUID) ([]cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return nil, s.loadErr
	}
	var items []cart.LineItem
	for _, item := range s.rows[accountID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return cart.CloneItems(items), nil
}

func (s *fakeRemoteStore) Upsert(_ context.Context, accountID uuid.UUID, items []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if s.rows[accountID] == nil {
		s.rows[accountID] = make(map[cart.IdentityKey]cart.LineItem)
	}
	for _, item := range items {
		s.rows[accountID][item.Key()] = item
	}
	return nil
}

func (s *fakeRemoteStore) Reconcile(_ context.Context, accountID uuid.UUID, keep []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reconcileCalls++
	keepKeys := make(map[cart.IdentityKey]bool, len(keep))
	for _, item := range keep {
		keepKeys[item.Key()] = true
	}
	for key := range s.rows[accountID] {
		if !keepKeys[key] {
			delete(s.rows[accountID], key)
		}
	}
	return nil
}

func (s *fakeRemoteStore) seed(accountID uuid.UUID, items ...cart.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[accountID] == nil {
		s.rows[accountID] = make(map[cart.IdentityKey]cart.LineItem)
	}
	for _, item := range items {
		s.rows[accountID][item.Key()] = item
	}
}

func (s *fakeRemoteStore) itemsFor(accountID uuid.UUID) []cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []cart.LineItem
	for _, item := range s.rows[accountID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

func (s *fakeRemoteStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCalls
}
