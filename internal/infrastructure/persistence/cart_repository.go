package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormCartRepository implements cart.RemoteStore using GORM. Rows are keyed
// by (account_id, product_id, variation_id) and carry the full denormalized
// item so a cart loads without catalog lookups.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Load returns all cart rows owned by the account, oldest first so the cart
// keeps a stable display order across sessions
func (r *GormCartRepository) Load(ctx context.Context, accountID uuid.UUID) ([]cart.LineItem, error) {
	var rows []models.CartItemModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart for account %s: %w", accountID, err)
	}

	items := make([]cart.LineItem, len(rows))
	for i, row := range rows {
		items[i] = row.ToDomain()
	}
	return items, nil
}

// Upsert writes one row per item. On identity-key conflict the row is
// replaced with the current value (last-write-wins), never incremented.
func (r *GormCartRepository) Upsert(ctx context.Context, accountID uuid.UUID, items []cart.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]*models.CartItemModel, 0, len(items))
	for _, item := range items {
		row, err := models.CartItemModelFromDomain(accountID, item)
		if err != nil {
			return fmt.Errorf("failed to encode cart item %s: %w", item.Key(), err)
		}
		rows = append(rows, row)
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "account_id"},
				{Name: "product_id"},
				{Name: "variation_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "slug", "sku", "unit_price", "variation_price",
				"quantity", "attributes", "image", "updated_at",
			}),
		}).
		Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to upsert cart for account %s: %w", accountID, err)
	}
	return nil
}

// Reconcile deletes every row owned by the account whose identity key is
// not present in keep. An empty keep set deletes all rows for the account.
func (r *GormCartRepository) Reconcile(ctx context.Context, accountID uuid.UUID, keep []cart.LineItem) error {
	query := r.db.WithContext(ctx).Where("account_id = ?", accountID)

	if len(keep) > 0 {
		pairs := make([][]any, len(keep))
		for i, item := range keep {
			pairs[i] = []any{item.ProductID, cart.NormalizeVariation(item.VariationID)}
		}
		query = query.Where("(product_id, variation_id) NOT IN ?", pairs)
	}

	if err := query.Delete(&models.CartItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to reconcile cart for account %s: %w", accountID, err)
	}
	return nil
}

var _ cart.RemoteStore = (*GormCartRepository)(nil)
