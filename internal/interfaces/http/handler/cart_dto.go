package handler

import (
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest is the payload for adding a line item. Display metadata
// travels with the request so the cart renders without catalog lookups.
type AddItemRequest struct {
	ProductID          string            `json:"product_id" binding:"required,max=64"`
	VariationID        string            `json:"variation_id" binding:"omitempty,max=64"`
	Name               string            `json:"name" binding:"required,max=255"`
	Slug               string            `json:"slug" binding:"omitempty,max=255"`
	SKU                string            `json:"sku" binding:"omitempty,max=64"`
	UnitPrice          string            `json:"unit_price" binding:"required,price"`
	VariationPrice     string            `json:"variation_price" binding:"omitempty,price"`
	Quantity           int               `json:"quantity" binding:"required,min=1"`
	SelectedAttributes map[string]string `json:"selected_attributes" binding:"omitempty"`
	Image              string            `json:"image" binding:"omitempty,max=512"`
}

// UpdateQuantityRequest is the payload for replacing a line's quantity
type UpdateQuantityRequest struct {
	VariationID string `json:"variation_id" binding:"omitempty,max=64"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

// CartResponse is the full cart snapshot returned from every cart endpoint
type CartResponse struct {
	Items     []cart.LineItem `json:"items"`
	Total     string          `json:"total"`
	ItemCount int             `json:"item_count"`
	State     string          `json:"state"`
}
