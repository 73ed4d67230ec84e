package cart

import "github.com/storefront/backend/internal/domain/shared"

// Cart domain errors
var (
	ErrItemNotFound    = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Cart item not found")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	ErrNotReady        = shared.NewDomainError("CART_NOT_READY", "Cart has not been bootstrapped yet")
	ErrMerging         = shared.NewDomainError("CART_MERGING", "Cart is merging a guest snapshot, retry shortly")
)
