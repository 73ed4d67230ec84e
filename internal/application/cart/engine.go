package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"go.uber.org/zap"
)

// State is the lifecycle state of a cart engine
type State string

const (
	StateUninitialized     State = "UNINITIALIZED"
	StateLoadingGuest      State = "LOADING_GUEST"
	StateLoadingIdentified State = "LOADING_IDENTIFIED"
	StateReadyGuest        State = "READY_GUEST"
	StateReadyIdentified   State = "READY_IDENTIFIED"
	StateMerging           State = "MERGING"
)

// flushTimeout bounds the background write-through call
const flushTimeout = 10 * time.Second

// Engine keeps one cart consistent across an anonymous session, a
// signed-in session and the transition between them. The in-memory cart it
// owns is the single source of truth; the local snapshot store and the
// remote row store are write-through caches of it, read only at bootstrap
// or merge time.
//
// All mutations are debounced through the SyncScheduler into a single
// deferred write targeting whichever store is currently authoritative:
// the local snapshot while guest, the remote rows (upsert followed by a
// reconciliation delete of stale rows) once identified.
//
// Background persistence failures are logged and never surfaced to the
// caller; the next mutation's debounce cycle acts as the retry.
type Engine struct {
	mu        sync.Mutex
	items     *cart.Cart
	state     State
	sessionID string
	accountID uuid.UUID

	local     cart.LocalStore
	remote    cart.RemoteStore
	scheduler *SyncScheduler
	logger    *zap.Logger
}

// NewEngine creates an engine for one cart owner. sessionID scopes the
// local snapshot; the account identity arrives later through Bootstrap.
func NewEngine(sessionID string, local cart.LocalStore, remote cart.RemoteStore, scheduler *SyncScheduler, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		items:     cart.NewCart(),
		state:     StateUninitialized,
		sessionID: sessionID,
		local:     local,
		remote:    remote,
		scheduler: scheduler,
		logger:    logger.With(zap.String("session_id", sessionID)),
	}
}

// Bootstrap loads the authoritative snapshot for the given identity. The
// hosting application calls it once at session start and again on every
// identity-presence change.
//
// Transitions:
//   - no identity, uninitialized: load the local guest snapshot.
//   - no identity, previously identified: sign-out. The in-memory cart
//     resets to empty; the previously cleared local snapshot is not
//     reloaded.
//   - identity, uninitialized: load the remote cart.
//   - identity, ready guest: one-time merge of the local snapshot into the
//     remote cart, write-through, then clear the local snapshot.
//
// The scheduler is suppressed for the duration so a half-loaded in-memory
// cart can never overwrite a populated store.
func (e *Engine) Bootstrap(ctx context.Context, accountID *uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if accountID == nil {
		return e.bootstrapGuest(ctx)
	}
	return e.bootstrapIdentified(ctx, *accountID)
}

func (e *Engine) bootstrapGuest(ctx context.Context) error {
	switch e.state {
	case StateReadyIdentified:
		// Sign-out: drop any pending identified write and reset.
		e.scheduler.Cancel()
		e.items.Clear()
		e.accountID = uuid.Nil
		e.state = StateReadyGuest
		return nil
	case StateReadyGuest:
		return nil
	default:
		e.state = StateLoadingGuest
		e.items.Replace(e.local.Load(ctx, e.sessionID))
		e.state = StateReadyGuest
		return nil
	}
}

func (e *Engine) bootstrapIdentified(ctx context.Context, accountID uuid.UUID) error {
	switch e.state {
	case StateReadyIdentified:
		if e.accountID == accountID {
			return nil
		}
		// Identity switched without a sign-out in between; reload.
		e.scheduler.Cancel()
		fallthrough
	case StateUninitialized, StateLoadingGuest, StateLoadingIdentified:
		e.state = StateLoadingIdentified
		e.items.Replace(e.loadRemote(ctx, accountID))
		e.accountID = accountID
		e.state = StateReadyIdentified
		return nil
	case StateReadyGuest:
		return e.mergeGuestCart(ctx, accountID)
	default:
		return cart.ErrMerging
	}
}

// mergeGuestCart reconciles the guest snapshot into the account cart,
// exactly once per guest-to-identified transition.
func (e *Engine) mergeGuestCart(ctx context.Context, accountID uuid.UUID) error {
	e.state = StateMerging
	e.scheduler.Cancel()

	// The in-memory cart is the authoritative guest state: it was loaded
	// from the local snapshot at bootstrap and includes mutations whose
	// debounced write never fired. Merging it instead of re-reading the
	// snapshot means a cancelled pending write cannot lose items.
	remote := e.loadRemote(ctx, accountID)
	local := e.items.Items()
	merged := cart.Merge(remote, local)

	e.items.Replace(merged)
	e.accountID = accountID

	// Write-through. Upsert and reconcile are not transactional; a failure
	// between them leaves stale rows that the next flush cycle removes.
	if err := e.remote.Upsert(ctx, accountID, merged); err != nil {
		e.logger.Error("merge upsert failed", zap.Error(err))
	} else if err := e.remote.Reconcile(ctx, accountID, merged); err != nil {
		e.logger.Error("merge reconcile failed", zap.Error(err))
	}
	if err := e.local.Clear(ctx, e.sessionID); err != nil {
		e.logger.Warn("guest snapshot clear failed", zap.Error(err))
	}

	e.state = StateReadyIdentified
	return nil
}

func (e *Engine) loadRemote(ctx context.Context, accountID uuid.UUID) []cart.LineItem {
	items, err := e.remote.Load(ctx, accountID)
	if err != nil {
		// Degrade to an empty remote cart rather than failing the session.
		e.logger.Error("remote cart load failed", zap.Error(err), zap.String("account_id", accountID.String()))
		return nil
	}
	return items
}

// AddItem puts a line item into the cart, merging quantity into an
// existing line with the same identity key
func (e *Engine) AddItem(item cart.LineItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMutable(); err != nil {
		return err
	}
	if err := e.items.Add(item); err != nil {
		return err
	}
	e.scheduleFlush()
	return nil
}

// UpdateQuantity replaces the quantity of the line with the given key
func (e *Engine) UpdateQuantity(key cart.IdentityKey, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMutable(); err != nil {
		return err
	}
	if err := e.items.SetQuantity(key, quantity); err != nil {
		return err
	}
	e.scheduleFlush()
	return nil
}

// RemoveItem deletes the line with the given key
func (e *Engine) RemoveItem(key cart.IdentityKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMutable(); err != nil {
		return err
	}
	if err := e.items.Remove(key); err != nil {
		return err
	}
	e.scheduleFlush()
	return nil
}

// Clear empties the cart
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMutable(); err != nil {
		return err
	}
	e.items.Clear()
	e.scheduleFlush()
	return nil
}

// Items returns a copy of the current line items
func (e *Engine) Items() []cart.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items.Items()
}

// Total returns the cart total, always recomputed from current items
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items.Total()
}

// ItemCount returns the summed quantity across all lines
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items.ItemCount()
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsLoading reports whether a bootstrap or merge is in progress
func (e *Engine) IsLoading() bool {
	switch e.State() {
	case StateLoadingGuest, StateLoadingIdentified, StateMerging:
		return true
	}
	return false
}

// Flush forces the pending write-through immediately. Used on graceful
// shutdown so a debounced write is not lost.
func (e *Engine) Flush(ctx context.Context) {
	e.scheduler.Cancel()
	e.flushWith(ctx)
}

// checkMutable enforces the lifecycle states that admit mutations.
// Mutations during the merge transient are rejected, not queued.
func (e *Engine) checkMutable() error {
	switch e.state {
	case StateReadyGuest, StateReadyIdentified:
		return nil
	case StateMerging:
		return cart.ErrMerging
	default:
		return cart.ErrNotReady
	}
}

// scheduleFlush arms the debounced write-through. Caller holds e.mu.
func (e *Engine) scheduleFlush() {
	e.scheduler.Schedule(e.flush)
}

// flush runs on the scheduler's timer goroutine after the quiet interval
func (e *Engine) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	e.flushWith(ctx)
}

func (e *Engine) flushWith(ctx context.Context) {
	e.mu.Lock()
	state := e.state
	accountID := e.accountID
	items := e.items.Items()
	e.mu.Unlock()

	switch state {
	case StateReadyGuest:
		if err := e.local.Save(ctx, e.sessionID, items); err != nil {
			e.logger.Warn("guest snapshot save failed", zap.Error(err))
		}
	case StateReadyIdentified:
		if err := e.remote.Upsert(ctx, accountID, items); err != nil {
			e.logger.Error("cart upsert failed", zap.Error(err))
			return
		}
		if err := e.remote.Reconcile(ctx, accountID, items); err != nil {
			// Orphan rows linger until the next successful reconcile.
			e.logger.Error("cart reconcile failed", zap.Error(err))
		}
	default:
		// Bootstrap or merge in flight; that path does its own writes.
	}
}
