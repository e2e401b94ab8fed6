package wishlist_test

import (
	"testing"

	"github.com/shopease/storefront/internal/wishlist"
	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	t.Run("Toggle twice restores membership", func(t *testing.T) {
		start := wishlist.FromIDs([]int64{1, 2})

		once := start.Toggle(7)
		twice := once.Toggle(7)

		assert.True(t, once.Contains(7))
		assert.False(t, twice.Contains(7))
		assert.Equal(t, start.ProductIDs, twice.ProductIDs)
	})

	t.Run("Toggle removes present id and keeps order", func(t *testing.T) {
		start := wishlist.FromIDs([]int64{3, 7, 5})

		next := start.Toggle(7)

		assert.Equal(t, []int64{3, 5}, next.ProductIDs)
		assert.Equal(t, []int64{3, 7, 5}, start.ProductIDs, "input state must not change")
	})

	t.Run("Toggle on empty state", func(t *testing.T) {
		next := wishlist.InitialState().Toggle(4)

		assert.Equal(t, []int64{4}, next.ProductIDs)
	})
}

func TestFromIDs(t *testing.T) {
	state := wishlist.FromIDs([]int64{4, 2, 4, 9, 2})

	assert.Equal(t, []int64{4, 2, 9}, state.ProductIDs)
	assert.Equal(t, []int64{}, wishlist.FromIDs(nil).IDs())
}
