package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"go.uber.org/zap"
)

// Registry hands out one Engine per cart owner and keeps it bootstrapped
// for the identity carried by the current request. Guest carts are keyed by
// session ID; requests without a session fall back to an account-scoped
// key. Calling Resolve with a fresh identity for a session that was guest
// so far triggers the one-time merge inside Engine.Bootstrap.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine

	local    cart.LocalStore
	remote   cart.RemoteStore
	interval time.Duration
	clock    Clock
	logger   *zap.Logger
}

// NewRegistry creates an engine registry
func NewRegistry(local cart.LocalStore, remote cart.RemoteStore, interval time.Duration, clock Clock, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		engines:  make(map[string]*Engine),
		local:    local,
		remote:   remote,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Resolve returns the engine for the given session/identity pair,
// creating and bootstrapping it on first use
func (r *Registry) Resolve(ctx context.Context, sessionID string, accountID *uuid.UUID) (*Engine, error) {
	key := sessionID
	if key == "" {
		if accountID == nil {
			return nil, cart.ErrNotReady
		}
		key = "account:" + accountID.String()
	}

	r.mu.Lock()
	engine, ok := r.engines[key]
	if !ok {
		engine = NewEngine(sessionID, r.local, r.remote, NewSyncScheduler(r.interval, r.clock), r.logger)
		r.engines[key] = engine
	}
	r.mu.Unlock()

	if err := engine.Bootstrap(ctx, accountID); err != nil {
		return nil, err
	}
	return engine, nil
}

// Shutdown flushes every engine's pending write-through
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	engines := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}
	r.mu.Unlock()

	for _, e := range engines {
		e.Flush(ctx)
	}
}
