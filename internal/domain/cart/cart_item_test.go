package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartItem(t *testing.T) {
	cartID := uuid.New()
	productID := uuid.New()

	t.Run("creates line with positive quantity", func(t *testing.T) {
		item, err := NewCartItem(cartID, productID, 2)
		require.NoError(t, err)

		assert.Equal(t, cartID, item.CartID)
		assert.Equal(t, productID, item.ProductID)
		assert.Equal(t, 2, item.Quantity)
		assert.True(t, item.BelongsTo(cartID))
		assert.False(t, item.BelongsTo(uuid.New()))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewCartItem(cartID, productID, 0)
		require.Error(t, err)
		_, err = NewCartItem(cartID, productID, -1)
		require.Error(t, err)
	})
}

func TestCartItemSetQuantity(t *testing.T) {
	t.Run("overwrite is absolute, not additive", func(t *testing.T) {
		item, err := NewCartItem(uuid.New(), uuid.New(), 2)
		require.NoError(t, err)

		require.NoError(t, item.SetQuantity(7))
		assert.Equal(t, 7, item.Quantity)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item, err := NewCartItem(uuid.New(), uuid.New(), 2)
		require.NoError(t, err)

		require.Error(t, item.SetQuantity(-5))
		assert.Equal(t, 2, item.Quantity)
	})
}
