package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a currency-formatted display string into a decimal.
// Non-numeric characters are stripped (currency symbols, spaces, thousands
// separators) and a decimal comma is normalized to a period, so "R$ 12,50",
// "12.50" and "$12.50" all parse to 12.5. Unparseable input yields zero.
func ParsePrice(price string) decimal.Decimal {
	var b strings.Builder
	for _, r := range price {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		case r == '.':
			b.WriteByte('.')
		}
	}

	cleaned := b.String()
	// Keep only the last separator as the decimal point; earlier ones are
	// thousands separators ("1.234,56" -> "1234.56").
	if first, last := strings.Index(cleaned, "."), strings.LastIndex(cleaned, "."); first != last {
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// EffectivePrice returns the price used for totals: the variation price
// override when present, otherwise the unit price
func EffectivePrice(item LineItem) decimal.Decimal {
	if item.VariationPrice != "" {
		return ParsePrice(item.VariationPrice)
	}
	return ParsePrice(item.UnitPrice)
}

// Total computes the cart total from the given line items.
// Always recomputed from the current items, never cached.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(EffectivePrice(item).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount computes the total quantity across all line items
func ItemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
