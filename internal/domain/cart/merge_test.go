package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Run("empty local leaves remote unchanged", func(t *testing.T) {
		remote := []LineItem{
			{ProductID: "a", Name: "A", UnitPrice: "10.00", Quantity: 3},
		}

		merged := Merge(remote, nil)

		assert.Equal(t, remote, merged)
	})

	t.Run("quantity collision sums quantities and keeps remote metadata", func(t *testing.T) {
		remote := []LineItem{
			{ProductID: "a", Name: "Remote Name", UnitPrice: "10.00", Image: "remote.jpg", Quantity: 3},
		}
		local := []LineItem{
			{ProductID: "a", Name: "Stale Name", UnitPrice: "9.00", Image: "stale.jpg", Quantity: 2},
		}

		merged := Merge(remote, local)

		require.Len(t, merged, 1)
		assert.Equal(t, 5, merged[0].Quantity)
		assert.Equal(t, "Remote Name", merged[0].Name)
		assert.Equal(t, "10.00", merged[0].UnitPrice)
		assert.Equal(t, "remote.jpg", merged[0].Image)
	})

	t.Run("disjoint carts union", func(t *testing.T) {
		remote := []LineItem{{ProductID: "a", Quantity: 3}}
		local := []LineItem{{ProductID: "b", Quantity: 1}}

		merged := Merge(remote, local)

		require.Len(t, merged, 2)
		assert.Equal(t, "a", merged[0].ProductID)
		assert.Equal(t, 3, merged[0].Quantity)
		assert.Equal(t, "b", merged[1].ProductID)
		assert.Equal(t, 1, merged[1].Quantity)
	})

	t.Run("both empty yields empty", func(t *testing.T) {
		assert.Empty(t, Merge(nil, nil))
	})

	t.Run("variation distinguishes lines for the same product", func(t *testing.T) {
		remote := []LineItem{{ProductID: "a", VariationID: "red", Quantity: 1}}
		local := []LineItem{{ProductID: "a", VariationID: "blue", Quantity: 1}}

		merged := Merge(remote, local)

		assert.Len(t, merged, 2)
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		remote := []LineItem{{ProductID: "a", Quantity: 3}}
		local := []LineItem{{ProductID: "a", Quantity: 2}}

		_ = Merge(remote, local)

		assert.Equal(t, 3, remote[0].Quantity)
		assert.Equal(t, 2, local[0].Quantity)
	})
}
