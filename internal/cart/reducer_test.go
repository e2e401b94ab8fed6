package cart_test

import (
	"testing"

	"github.com/shopease/storefront/internal/cart"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price int64) models.CartLineItem {
	return models.CartLineItem{
		ProductID: id,
		Title:     "Product",
		UnitPrice: decimal.NewFromInt(price),
		Brand:     "Acme",
	}
}

func assertTotalsConsistent(t *testing.T, state cart.State) {
	t.Helper()

	total := decimal.Zero
	count := 0

	for _, item := range state.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}

	assert.True(t, total.Equal(state.TotalPrice), "totalPrice %s should equal %s", state.TotalPrice, total)
	assert.Equal(t, count, state.TotalItems)
}

func TestReduce_AddItem(t *testing.T) {
	t.Run("Same product merges into one line", func(t *testing.T) {
		// Arrange
		state := cart.InitialState()

		// Act
		state = cart.Reduce(state, cart.AddItem(product(1, 10), 2))
		state = cart.Reduce(state, cart.AddItem(product(1, 10), 3))

		// Assert
		require.Len(t, state.Items, 1)
		assert.Equal(t, 5, state.Items[0].Quantity)
		assert.Equal(t, 5, state.TotalItems)
		assert.True(t, decimal.NewFromInt(50).Equal(state.TotalPrice))
	})

	t.Run("Quantities sum across many adds", func(t *testing.T) {
		state := cart.InitialState()
		quantities := []int{1, 4, 2, 7, 3}
		sum := 0

		for _, q := range quantities {
			state = cart.Reduce(state, cart.AddItem(product(9, 3), q))
			sum += q
		}

		require.Len(t, state.Items, 1)
		assert.Equal(t, sum, state.Items[0].Quantity)
		assertTotalsConsistent(t, state)
	})

	t.Run("New products append in insertion order", func(t *testing.T) {
		state := cart.InitialState()

		state = cart.Reduce(state, cart.AddItem(product(3, 1), 1))
		state = cart.Reduce(state, cart.AddItem(product(1, 1), 1))
		state = cart.Reduce(state, cart.AddItem(product(2, 1), 1))

		require.Len(t, state.Items, 3)
		assert.Equal(t, int64(3), state.Items[0].ProductID)
		assert.Equal(t, int64(1), state.Items[1].ProductID)
		assert.Equal(t, int64(2), state.Items[2].ProductID)
	})

	t.Run("Input state is not mutated", func(t *testing.T) {
		before := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 1))

		_ = cart.Reduce(before, cart.AddItem(product(1, 10), 4))

		assert.Equal(t, 1, before.Items[0].Quantity)
		assert.Equal(t, 1, before.TotalItems)
	})
}

func TestReduce_RemoveItem(t *testing.T) {
	t.Run("Add then remove leaves empty cart", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(2, 20), 1))

		state = cart.Reduce(state, cart.RemoveItem(2))

		assert.Empty(t, state.Items)
		assert.Equal(t, 0, state.TotalItems)
		assert.True(t, state.TotalPrice.IsZero())
	})

	t.Run("Absent product is a no-op", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))

		next := cart.Reduce(state, cart.RemoveItem(42))

		assert.Equal(t, state, next)
	})
}

func TestReduce_UpdateQuantity(t *testing.T) {
	t.Run("Sets quantity directly", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))

		state = cart.Reduce(state, cart.UpdateQuantity(1, 7))

		assert.Equal(t, 7, state.Items[0].Quantity)
		assert.True(t, decimal.NewFromInt(70).Equal(state.TotalPrice))
	})

	t.Run("Reducer does not clamp", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))

		state = cart.Reduce(state, cart.UpdateQuantity(1, 0))

		require.Len(t, state.Items, 1)
		assert.Equal(t, 0, state.Items[0].Quantity)
		assertTotalsConsistent(t, state)
	})

	t.Run("Absent product is a no-op", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))

		assert.Equal(t, state, cart.Reduce(state, cart.UpdateQuantity(5, 3)))
	})
}

func TestReduce_ClearAndSet(t *testing.T) {
	t.Run("Clear empties the cart", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))

		state = cart.Reduce(state, cart.ClearCart())

		assert.NotNil(t, state.Items)
		assert.Empty(t, state.Items)
		assert.Equal(t, 0, state.TotalItems)
	})

	t.Run("Set replaces prior items and is idempotent", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))
		payload := []models.CartLineItem{
			{ProductID: 5, UnitPrice: decimal.RequireFromString("2.50"), Quantity: 4},
		}

		once := cart.Reduce(state, cart.SetCart(payload))
		twice := cart.Reduce(once, cart.SetCart(payload))

		require.Len(t, once.Items, 1)
		assert.Equal(t, int64(5), once.Items[0].ProductID)
		assert.True(t, decimal.NewFromInt(10).Equal(once.TotalPrice))
		assert.Equal(t, once, twice)
	})

	t.Run("Set with empty payload overwrites unsynced items", func(t *testing.T) {
		state := cart.InitialState()
		for id := int64(1); id <= 3; id++ {
			state = cart.Reduce(state, cart.AddItem(product(id, 5), 1))
		}

		state = cart.Reduce(state, cart.SetCart([]models.CartLineItem{}))

		assert.Empty(t, state.Items)
		assert.Equal(t, 0, state.TotalItems)
	})

	t.Run("Unknown action returns state unchanged", func(t *testing.T) {
		state := cart.Reduce(cart.InitialState(), cart.AddItem(product(1, 10), 2))

		assert.Equal(t, state, cart.Reduce(state, cart.Action{Type: "NOPE"}))
	})
}

func TestReduce_TotalsConsistentAcrossSequence(t *testing.T) {
	state := cart.InitialState()
	actions := []cart.Action{
		cart.AddItem(product(1, 10), 2),
		cart.AddItem(product(2, 7), 1),
		cart.UpdateQuantity(2, 6),
		cart.AddItem(product(3, 1), 9),
		cart.RemoveItem(1),
		cart.AddItem(product(1, 10), 1),
		cart.SetCart([]models.CartLineItem{{ProductID: 8, UnitPrice: decimal.RequireFromString("0.99"), Quantity: 3}}),
		cart.AddItem(product(4, 4), 2),
		cart.ClearCart(),
	}

	for _, action := range actions {
		state = cart.Reduce(state, action)
		assertTotalsConsistent(t, state)
	}
}
