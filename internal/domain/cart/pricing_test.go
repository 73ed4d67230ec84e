package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain decimal", "12.50", "12.5"},
		{"decimal comma", "5,00", "5"},
		{"currency symbol", "$12.50", "12.5"},
		{"currency prefix with space", "R$ 12,50", "12.5"},
		{"thousands separator", "1.234,56", "1234.56"},
		{"integer", "42", "42"},
		{"empty string", "", "0"},
		{"garbage", "abc", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"ParsePrice(%q) = %s, want %s", tt.input, got, tt.want)
		})
	}
}

func TestEffectivePrice(t *testing.T) {
	t.Run("uses unit price by default", func(t *testing.T) {
		item := LineItem{UnitPrice: "10.00"}
		assert.True(t, EffectivePrice(item).Equal(decimal.NewFromInt(10)))
	})

	t.Run("variation price overrides unit price", func(t *testing.T) {
		item := LineItem{UnitPrice: "10.00", VariationPrice: "12.00"}
		assert.True(t, EffectivePrice(item).Equal(decimal.NewFromInt(12)))
	})
}

func TestTotalAndItemCount(t *testing.T) {
	t.Run("mixed separators sum correctly", func(t *testing.T) {
		items := []LineItem{
			{ProductID: "a", UnitPrice: "12.50", Quantity: 2},
			{ProductID: "b", UnitPrice: "5,00", Quantity: 1},
		}

		assert.True(t, Total(items).Equal(decimal.NewFromInt(30)), "total = %s", Total(items))
		assert.Equal(t, 3, ItemCount(items))
	})

	t.Run("empty cart totals zero", func(t *testing.T) {
		assert.True(t, Total(nil).IsZero())
		assert.Equal(t, 0, ItemCount(nil))
	})
}
