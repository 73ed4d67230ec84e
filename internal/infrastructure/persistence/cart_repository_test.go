package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/cart"
)

// setupCartTestDB creates an in-memory SQLite database for testing
func setupCartTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE cart_items (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			variation_id TEXT NOT NULL DEFAULT 'default',
			name TEXT NOT NULL,
			slug TEXT,
			sku TEXT,
			unit_price TEXT NOT NULL,
			variation_price TEXT,
			quantity INTEGER NOT NULL,
			attributes TEXT,
			image TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(account_id, product_id, variation_id)
		)
	`).Error
	require.NoError(t, err)

	return db
}

func cartRow(product, variation string, qty int) cart.LineItem {
	return cart.LineItem{
		ProductID:   product,
		VariationID: variation,
		Name:        "Item " + product,
		Slug:        "item-" + product,
		UnitPrice:   "12.50",
		Quantity:    qty,
	}
}

func TestGormCartRepository_LoadEmpty(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))

	items, err := repo.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGormCartRepository_UpsertAndLoad(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	items := []cart.LineItem{
		cartRow("prod-a", "", 2),
		cartRow("prod-b", "var-red", 1),
	}
	items[1].SelectedAttributes = map[string]string{"color": "red"}
	items[1].VariationPrice = "15.00"

	require.NoError(t, repo.Upsert(ctx, accountID, items))

	loaded, err := repo.Load(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byKey := make(map[cart.IdentityKey]cart.LineItem)
	for _, item := range loaded {
		byKey[item.Key()] = item
	}

	plain := byKey[cart.NewIdentityKey("prod-a", "")]
	assert.Equal(t, "", plain.VariationID) // sentinel mapped back
	assert.Equal(t, 2, plain.Quantity)
	assert.Equal(t, "12.50", plain.UnitPrice)

	varied := byKey[cart.NewIdentityKey("prod-b", "var-red")]
	assert.Equal(t, "var-red", varied.VariationID)
	assert.Equal(t, "15.00", varied.VariationPrice)
	assert.Equal(t, map[string]string{"color": "red"}, varied.SelectedAttributes)
}

func TestGormCartRepository_UpsertReplacesQuantity(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, accountID, []cart.LineItem{cartRow("prod-a", "", 2)}))

	// Same identity key again: quantity is replaced, not summed.
	updated := cartRow("prod-a", "", 5)
	updated.Name = "Item prod-a renamed"
	require.NoError(t, repo.Upsert(ctx, accountID, []cart.LineItem{updated}))

	loaded, err := repo.Load(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 5, loaded[0].Quantity)
	assert.Equal(t, "Item prod-a renamed", loaded[0].Name)
}

func TestGormCartRepository_UpsertEmptyIsNoop(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	require.NoError(t, repo.Upsert(context.Background(), uuid.New(), nil))
}

func TestGormCartRepository_AccountsAreIsolated(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, repo.Upsert(ctx, first, []cart.LineItem{cartRow("prod-a", "", 1)}))
	require.NoError(t, repo.Upsert(ctx, second, []cart.LineItem{cartRow("prod-b", "", 1)}))

	loaded, err := repo.Load(ctx, first)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "prod-a", loaded[0].ProductID)
}

func TestGormCartRepository_ReconcileRemovesOrphans(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()
	other := uuid.New()

	require.NoError(t, repo.Upsert(ctx, accountID, []cart.LineItem{
		cartRow("prod-a", "", 1),
		cartRow("prod-b", "var-red", 2),
		cartRow("prod-c", "", 3),
	}))
	require.NoError(t, repo.Upsert(ctx, other, []cart.LineItem{cartRow("prod-a", "", 9)}))

	keep := []cart.LineItem{
		cartRow("prod-a", "", 1),
		cartRow("prod-b", "var-red", 2),
	}
	require.NoError(t, repo.Reconcile(ctx, accountID, keep))

	loaded, err := repo.Load(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	for _, item := range loaded {
		assert.NotEqual(t, "prod-c", item.ProductID)
	}

	// Other account untouched.
	otherItems, err := repo.Load(ctx, other)
	require.NoError(t, err)
	assert.Len(t, otherItems, 1)
}

func TestGormCartRepository_ReconcileEmptyKeepDeletesAll(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, accountID, []cart.LineItem{
		cartRow("prod-a", "", 1),
		cartRow("prod-b", "", 2),
	}))

	require.NoError(t, repo.Reconcile(ctx, accountID, nil))

	loaded, err := repo.Load(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestGormCartRepository_ReconcileDistinguishesVariations(t *testing.T) {
	repo := NewGormCartRepository(setupCartTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, accountID, []cart.LineItem{
		cartRow("prod-a", "", 1),
		cartRow("prod-a", "var-red", 2),
	}))

	require.NoError(t, repo.Reconcile(ctx, accountID, []cart.LineItem{cartRow("prod-a", "var-red", 2)}))

	loaded, err := repo.Load(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "var-red", loaded[0].VariationID)
}
