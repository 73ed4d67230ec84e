package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/domain/cart"
)

const testInterval = time.Second

func newTestEngine(t *testing.T) (*Engine, *fakeLocalStore, *fakeRemoteStore, *manualClock) {
	t.Helper()
	clock := newManualClock()
	local := newFakeLocalStore()
	remote := newFakeRemoteStore()
	engine := NewEngine("sess-1", local, remote, NewSyncScheduler(testInterval, clock), nil)
	return engine, local, remote, clock
}

func item(productID string, qty int) cart.LineItem {
	return cart.LineItem{ProductID: productID, Name: productID, UnitPrice: "10.00", Quantity: qty}
}

func TestEngine_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("guest bootstrap loads local snapshot", func(t *testing.T) {
		engine, local, _, _ := newTestEngine(t)
		require.NoError(t, local.Save(ctx, "sess-1", []cart.LineItem{item("a", 2)}))

		require.NoError(t, engine.Bootstrap(ctx, nil))

		assert.Equal(t, StateReadyGuest, engine.State())
		assert.Equal(t, 2, engine.ItemCount())
		assert.False(t, engine.IsLoading())
	})

	t.Run("identified bootstrap loads remote cart", func(t *testing.T) {
		engine, _, remote, _ := newTestEngine(t)
		accountID := uuid.New()
		remote.seed(accountID, item("a", 3))

		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		assert.Equal(t, StateReadyIdentified, engine.State())
		assert.Equal(t, 3, engine.ItemCount())
	})

	t.Run("remote load failure degrades to empty cart", func(t *testing.T) {
		engine, _, remote, _ := newTestEngine(t)
		remote.loadErr = errors.New("network down")
		accountID := uuid.New()

		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		assert.Equal(t, StateReadyIdentified, engine.State())
		assert.Empty(t, engine.Items())
	})

	t.Run("repeated bootstrap with same identity is a no-op", func(t *testing.T) {
		engine, _, remote, _ := newTestEngine(t)
		accountID := uuid.New()
		remote.seed(accountID, item("a", 1))

		require.NoError(t, engine.Bootstrap(ctx, &accountID))
		require.NoError(t, engine.AddItem(item("b", 1)))
		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		// The in-memory mutation survives; no reload happened.
		assert.Equal(t, 2, len(engine.Items()))
	})
}

func TestEngine_MutationLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("mutations rejected before bootstrap", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t)
		assert.ErrorIs(t, engine.AddItem(item("a", 1)), cart.ErrNotReady)
	})

	t.Run("mutations allowed in both ready states", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t)
		require.NoError(t, engine.Bootstrap(ctx, nil))
		assert.NoError(t, engine.AddItem(item("a", 1)))

		accountID := uuid.New()
		require.NoError(t, engine.Bootstrap(ctx, &accountID))
		assert.NoError(t, engine.AddItem(item("b", 1)))
	})
}

func TestEngine_DebouncedWriteThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("burst of mutations produces one guest write of the final state", func(t *testing.T) {
		engine, local, _, clock := newTestEngine(t)
		require.NoError(t, engine.Bootstrap(ctx, nil))

		require.NoError(t, engine.AddItem(item("a", 1)))
		clock.Advance(300 * time.Millisecond)
		require.NoError(t, engine.AddItem(item("b", 1)))
		clock.Advance(300 * time.Millisecond)
		require.NoError(t, engine.UpdateQuantity(cart.NewIdentityKey("a", ""), 5))

		assert.Equal(t, 0, local.saveCount())

		clock.Advance(testInterval)

		require.Equal(t, 1, local.saveCount())
		saved := local.Load(ctx, "sess-1")
		require.Len(t, saved, 2)
		assert.Equal(t, 5, saved[0].Quantity)
	})

	t.Run("identified flush upserts and reconciles", func(t *testing.T) {
		engine, _, remote, clock := newTestEngine(t)
		accountID := uuid.New()
		remote.seed(accountID, item("a", 1), item("b", 1))
		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		require.NoError(t, engine.RemoveItem(cart.NewIdentityKey("b", "")))
		clock.Advance(testInterval)

		rows := remote.itemsFor(accountID)
		require.Len(t, rows, 1)
		assert.Equal(t, "a", rows[0].ProductID)
	})

	t.Run("clear persists an empty remote cart", func(t *testing.T) {
		engine, _, remote, clock := newTestEngine(t)
		accountID := uuid.New()
		remote.seed(accountID, item("a", 1), item("b", 2))
		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		require.NoError(t, engine.Clear())
		clock.Advance(testInterval)

		assert.Empty(t, remote.itemsFor(accountID))
	})

	t.Run("upsert failure skips reconcile and is not fatal", func(t *testing.T) {
		engine, _, remote, clock := newTestEngine(t)
		accountID := uuid.New()
		require.NoError(t, engine.Bootstrap(ctx, &accountID))
		remote.upsertErr = errors.New("write refused")

		require.NoError(t, engine.AddItem(item("a", 1)))
		clock.Advance(testInterval)

		assert.Equal(t, 1, remote.upsertCount())
		assert.Equal(t, 0, remote.reconcileCalls)

		// Next mutation's debounce cycle is the retry.
		remote.upsertErr = nil
		require.NoError(t, engine.AddItem(item("b", 1)))
		clock.Advance(testInterval)

		assert.Len(t, remote.itemsFor(accountID), 2)
	})

	t.Run("explicit flush writes immediately", func(t *testing.T) {
		engine, local, _, _ := newTestEngine(t)
		require.NoError(t, engine.Bootstrap(ctx, nil))
		require.NoError(t, engine.AddItem(item("a", 1)))

		engine.Flush(ctx)

		assert.Equal(t, 1, local.saveCount())
	})
}

func TestEngine_GuestToIdentifiedMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("merge sums quantities and keeps remote metadata", func(t *testing.T) {
		engine, local, remote, _ := newTestEngine(t)
		accountID := uuid.New()
		remote.seed(accountID, cart.LineItem{ProductID: "a", Name: "Remote A", UnitPrice: "10.00", Quantity: 3})
		require.NoError(t, local.Save(ctx, "sess-1", []cart.LineItem{
			{ProductID: "a", Name: "Local A", UnitPrice: "9.00", Quantity: 2},
			{ProductID: "b", Name: "Local B", UnitPrice: "5.00", Quantity: 1},
		}))

		require.NoError(t, engine.Bootstrap(ctx, nil))
		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		assert.Equal(t, StateReadyIdentified, engine.State())
		items := engine.Items()
		require.Len(t, items, 2)
		assert.Equal(t, 5, items[0].Quantity)
		assert.Equal(t, "Remote A", items[0].Name)
		assert.Equal(t, "10.00", items[0].UnitPrice)

		// Merged cart written through to the remote store.
		rows := remote.itemsFor(accountID)
		require.Len(t, rows, 2)
		assert.Equal(t, 5, rows[0].Quantity)
	})

	t.Run("local snapshot is cleared after merge", func(t *testing.T) {
		engine, local, _, _ := newTestEngine(t)
		accountID := uuid.New()
		require.NoError(t, local.Save(ctx, "sess-1", []cart.LineItem{item("a", 1)}))

		require.NoError(t, engine.Bootstrap(ctx, nil))
		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		assert.Empty(t, local.Load(ctx, "sess-1"))
	})

	t.Run("both carts empty merges to empty with idempotent reconcile", func(t *testing.T) {
		engine, _, remote, _ := newTestEngine(t)
		accountID := uuid.New()

		require.NoError(t, engine.Bootstrap(ctx, nil))
		require.NoError(t, engine.Bootstrap(ctx, &accountID))

		assert.Empty(t, engine.Items())
		assert.Empty(t, remote.itemsFor(accountID))
	})

	t.Run("unsaved guest mutation survives the merge", func(t *testing.T) {
		engine, local, remote, clock := newTestEngine(t)
		accountID := uuid.New()
		require.NoError(t, engine.Bootstrap(ctx, nil))
		require.NoError(t, engine.AddItem(item("a", 1)))

		// Identity arrives before the debounced guest write fires. The
		// pending write is cancelled; the in-memory item still merges.
		require.NoError(t, engine.Bootstrap(ctx, &accountID))
		clock.Advance(testInterval)

		rows := remote.itemsFor(accountID)
		require.Len(t, rows, 1)
		assert.Equal(t, "a", rows[0].ProductID)
		assert.Empty(t, local.Load(ctx, "sess-1"))
		assert.Equal(t, 0, local.saveCount())
	})
}

func TestEngine_SignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("resets to an empty guest cart", func(t *testing.T) {
		engine, local, remote, _ := newTestEngine(t)
		accountID := uuid.New()
		remote.seed(accountID, item("a", 3))
		require.NoError(t, local.Save(ctx, "sess-1", []cart.LineItem{item("b", 1)}))

		require.NoError(t, engine.Bootstrap(ctx, &accountID))
		require.NoError(t, engine.Bootstrap(ctx, nil))

		assert.Equal(t, StateReadyGuest, engine.State())
		// Neither the remote cart nor the old local snapshot is reloaded.
		assert.Empty(t, engine.Items())
	})

	t.Run("pending identified write is dropped on sign-out", func(t *testing.T) {
		engine, _, remote, clock := newTestEngine(t)
		accountID := uuid.New()
		require.NoError(t, engine.Bootstrap(ctx, &accountID))
		require.NoError(t, engine.AddItem(item("a", 1)))

		require.NoError(t, engine.Bootstrap(ctx, nil))
		clock.Advance(testInterval)

		// The emptied guest cart must not clobber the account's rows.
		assert.Equal(t, 0, remote.upsertCount())
	})
}
