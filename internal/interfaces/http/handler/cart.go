package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart HTTP requests. Every endpoint resolves the
// caller's engine from the session header plus the optional JWT identity,
// so the same routes serve guest and identified shoppers.
type CartHandler struct {
	BaseHandler
	registry *appcart.Registry
}

// NewCartHandler creates a new cart handler
func NewCartHandler(registry *appcart.Registry) *CartHandler {
	return &CartHandler{registry: registry}
}

// RegisterRoutes registers cart routes on the given group
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carts := rg.Group("/cart")
	{
		carts.GET("", h.GetCart)
		carts.POST("/items", h.AddItem)
		carts.PATCH("/items/:product_id", h.UpdateQuantity)
		carts.DELETE("/items/:product_id", h.RemoveItem)
		carts.DELETE("", h.ClearCart)
		carts.POST("/sync", h.Sync)
	}
}

// resolveEngine resolves the caller's cart engine, bootstrapping it if
// this is the first request for the session or identity
func (h *CartHandler) resolveEngine(c *gin.Context) (*appcart.Engine, bool) {
	sessionID := middleware.GetSessionID(c)

	var accountID *uuid.UUID
	if id, ok := getAccountID(c); ok {
		accountID = &id
	}

	engine, err := h.registry.Resolve(c.Request.Context(), sessionID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return engine, true
}

func (h *CartHandler) cartResponse(engine *appcart.Engine) CartResponse {
	items := engine.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartResponse{
		Items:     items,
		Total:     engine.Total().StringFixed(2),
		ItemCount: engine.ItemCount(),
		State:     string(engine.State()),
	}
}

// GetCart returns the current cart snapshot
func (h *CartHandler) GetCart(c *gin.Context) {
	engine, ok := h.resolveEngine(c)
	if !ok {
		return
	}
	h.Success(c, h.cartResponse(engine))
}

// AddItem adds a line item, merging quantities on identity-key collision
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	engine, ok := h.resolveEngine(c)
	if !ok {
		return
	}

	item := cart.LineItem{
		ProductID:          req.ProductID,
		VariationID:        req.VariationID,
		Name:               req.Name,
		Slug:               req.Slug,
		SKU:                req.SKU,
		UnitPrice:          req.UnitPrice,
		VariationPrice:     req.VariationPrice,
		Quantity:           req.Quantity,
		SelectedAttributes: req.SelectedAttributes,
		Image:              req.Image,
	}

	if err := engine.AddItem(item); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartResponse(engine))
}

// UpdateQuantity replaces the quantity of an existing line item
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	engine, ok := h.resolveEngine(c)
	if !ok {
		return
	}

	key := cart.NewIdentityKey(c.Param("product_id"), req.VariationID)
	if err := engine.UpdateQuantity(key, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartResponse(engine))
}

// RemoveItem removes a line item
func (h *CartHandler) RemoveItem(c *gin.Context) {
	engine, ok := h.resolveEngine(c)
	if !ok {
		return
	}

	key := cart.NewIdentityKey(c.Param("product_id"), c.Query("variation_id"))
	if err := engine.RemoveItem(key); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartResponse(engine))
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	engine, ok := h.resolveEngine(c)
	if !ok {
		return
	}

	if err := engine.Clear(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartResponse(engine))
}

// Sync flushes pending writes immediately instead of waiting for the
// debounce interval. Clients call it on page unload.
func (h *CartHandler) Sync(c *gin.Context) {
	engine, ok := h.resolveEngine(c)
	if !ok {
		return
	}

	engine.Flush(c.Request.Context())
	h.Success(c, h.cartResponse(engine))
}
