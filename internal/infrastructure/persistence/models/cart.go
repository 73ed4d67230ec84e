package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/cart"
)

// CartItemModel is the persistence model for durable cart rows. One row
// exists per (account, product, variation); the unique index enforces the
// identity-key invariant at the storage layer.
type CartItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_identity"`
	ProductID      string    `gorm:"size:64;not null;uniqueIndex:idx_cart_items_identity"`
	VariationID    string    `gorm:"size:64;not null;default:'default';uniqueIndex:idx_cart_items_identity"`
	Name           string    `gorm:"size:255;not null"`
	Slug           string    `gorm:"size:255"`
	SKU            string    `gorm:"column:sku;size:64"`
	UnitPrice      string    `gorm:"size:32;not null"`
	VariationPrice string    `gorm:"size:32"`
	Quantity       int       `gorm:"not null"`
	Attributes     string    `gorm:"type:text"`
	Image          string    `gorm:"size:512"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for CartItemModel
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts CartItemModel to a domain LineItem. The stored
// variation sentinel maps back to an absent variation.
func (m *CartItemModel) ToDomain() cart.LineItem {
	item := cart.LineItem{
		ProductID:      m.ProductID,
		VariationID:    cart.DenormalizeVariation(m.VariationID),
		Name:           m.Name,
		Slug:           m.Slug,
		SKU:            m.SKU,
		UnitPrice:      m.UnitPrice,
		VariationPrice: m.VariationPrice,
		Quantity:       m.Quantity,
		Image:          m.Image,
	}
	if m.Attributes != "" {
		// A row written by an older build may carry attributes this build
		// cannot decode; the item is still usable without them.
		var attrs map[string]string
		if err := json.Unmarshal([]byte(m.Attributes), &attrs); err == nil {
			item.SelectedAttributes = attrs
		}
	}
	return item
}

// CartItemModelFromDomain converts a domain LineItem to a persistence row
// owned by the given account
func CartItemModelFromDomain(accountID uuid.UUID, item cart.LineItem) (*CartItemModel, error) {
	model := &CartItemModel{
		ID:             uuid.New(),
		AccountID:      accountID,
		ProductID:      item.ProductID,
		VariationID:    cart.NormalizeVariation(item.VariationID),
		Name:           item.Name,
		Slug:           item.Slug,
		SKU:            item.SKU,
		UnitPrice:      item.UnitPrice,
		VariationPrice: item.VariationPrice,
		Quantity:       item.Quantity,
		Image:          item.Image,
	}
	if len(item.SelectedAttributes) > 0 {
		data, err := json.Marshal(item.SelectedAttributes)
		if err != nil {
			return nil, err
		}
		model.Attributes = string(data)
	}
	return model, nil
}
