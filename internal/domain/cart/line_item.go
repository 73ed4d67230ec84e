package cart

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultVariation is the sentinel stored in place of an absent variation.
// A line item without a variation selection persists with this value so the
// natural key (product, variation) is always fully populated.
const DefaultVariation = "default"

// IdentityKey uniquely identifies a cart line within a snapshot.
// At most one line item per key may exist in any cart.
type IdentityKey struct {
	ProductID   string
	VariationID string
}

// String returns a stable textual form, useful for logging and map keys
func (k IdentityKey) String() string {
	return fmt.Sprintf("%s/%s", k.ProductID, k.VariationID)
}

// NewIdentityKey builds an identity key, normalizing an absent variation
// to the DefaultVariation sentinel
func NewIdentityKey(productID, variationID string) IdentityKey {
	return IdentityKey{
		ProductID:   productID,
		VariationID: NormalizeVariation(variationID),
	}
}

// NormalizeVariation maps an empty variation to the sentinel value
func NormalizeVariation(variationID string) string {
	if variationID == "" {
		return DefaultVariation
	}
	return variationID
}

// DenormalizeVariation maps the sentinel back to an absent variation
func DenormalizeVariation(variationID string) string {
	if variationID == DefaultVariation {
		return ""
	}
	return variationID
}

// LineItem represents one purchasable selection in a cart.
// Display metadata (name, slug, price, attributes) is a denormalized copy
// taken at add-time so the cart renders without a catalog lookup.
type LineItem struct {
	ProductID          string            `json:"product_id"`
	VariationID        string            `json:"variation_id,omitempty"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	SKU                string            `json:"sku"`
	UnitPrice          string            `json:"unit_price"`
	VariationPrice     string            `json:"variation_price,omitempty"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
	Image              string            `json:"image,omitempty"`
}

// NewLineItem creates a validated line item
func NewLineItem(productID, variationID, name, slug, sku, unitPrice string, quantity int) (*LineItem, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	return &LineItem{
		ProductID:   productID,
		VariationID: DenormalizeVariation(variationID),
		Name:        name,
		Slug:        slug,
		SKU:         sku,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
	}, nil
}

// Key returns the identity key of this line item
func (i *LineItem) Key() IdentityKey {
	return NewIdentityKey(i.ProductID, i.VariationID)
}

// SetQuantity replaces the quantity with the given value
func (i *LineItem) SetQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	i.Quantity = quantity
	return nil
}

// AddQuantity increases the quantity by the given amount
func (i *LineItem) AddQuantity(delta int) error {
	if delta < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity delta must be at least 1")
	}
	i.Quantity += delta
	return nil
}

// clone returns a deep copy of the line item
func (i LineItem) clone() LineItem {
	c := i
	if i.SelectedAttributes != nil {
		c.SelectedAttributes = make(map[string]string, len(i.SelectedAttributes))
		for k, v := range i.SelectedAttributes {
			c.SelectedAttributes[k] = v
		}
	}
	return c
}

// CloneItems returns a deep copy of a line item slice
func CloneItems(items []LineItem) []LineItem {
	cloned := make([]LineItem, len(items))
	for idx, item := range items {
		cloned[idx] = item.clone()
	}
	return cloned
}
