package cart

import (
	"github.com/shopspring/decimal"
)

// Cart is an in-memory cart snapshot. It is the single source of truth
// during a session; backing stores are write-through caches of it and are
// only read authoritatively at bootstrap or merge time.
//
// The identity-key invariant holds for every mutation: at most one line
// item per (product, variation) key. Adds for an existing key merge into
// the existing entry instead of duplicating it.
type Cart struct {
	items []LineItem
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{}
}

// NewCartFromItems creates a cart seeded with the given items.
// Items with duplicate identity keys are merged by summing quantities;
// the first occurrence keeps its metadata.
func NewCartFromItems(items []LineItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.merge(item)
	}
	return c
}

// Items returns a copy of the current line items
func (c *Cart) Items() []LineItem {
	return CloneItems(c.items)
}

// Len returns the number of distinct line items
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty returns true if the cart holds no line items
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Find returns the line item with the given identity key, or nil
func (c *Cart) Find(key IdentityKey) *LineItem {
	for idx := range c.items {
		if c.items[idx].Key() == key {
			return &c.items[idx]
		}
	}
	return nil
}

// Add puts a line item into the cart. If a line with the same identity key
// already exists its quantity is increased by the new item's quantity and
// its metadata is left unchanged; otherwise the item is appended.
func (c *Cart) Add(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	c.merge(item)
	return nil
}

// SetQuantity replaces the quantity of the line item with the given key
func (c *Cart) SetQuantity(key IdentityKey, quantity int) error {
	existing := c.Find(key)
	if existing == nil {
		return ErrItemNotFound
	}
	return existing.SetQuantity(quantity)
}

// Remove deletes the line item with the given key
func (c *Cart) Remove(key IdentityKey) error {
	for idx := range c.items {
		if c.items[idx].Key() == key {
			c.items = append(c.items[:idx], c.items[idx+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear removes all line items
func (c *Cart) Clear() {
	c.items = nil
}

// Replace swaps the cart contents for the given items (bootstrap/merge)
func (c *Cart) Replace(items []LineItem) {
	c.items = CloneItems(items)
}

// Total returns the cart total, recomputed from the current items
func (c *Cart) Total() decimal.Decimal {
	return Total(c.items)
}

// ItemCount returns the summed quantity across all line items
func (c *Cart) ItemCount() int {
	return ItemCount(c.items)
}

func (c *Cart) merge(item LineItem) {
	if existing := c.Find(item.Key()); existing != nil {
		existing.Quantity += item.Quantity
		return
	}
	c.items = append(c.items, item.clone())
}
