package mocks

import (
	"context"

	"github.com/shopease/storefront/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// WishlistRepository is a mock type for the WishlistRepository type
type WishlistRepository struct {
	mock.Mock
}

// GetWishlistByUserID provides a mock function with given fields: ctx, userID
func (_m *WishlistRepository) GetWishlistByUserID(ctx context.Context, userID string) (*models.RemoteWishlistRecord, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.RemoteWishlistRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.RemoteWishlistRecord)
	}

	return r0, ret.Error(1)
}

// UpsertWishlist provides a mock function with given fields: ctx, wishlist
func (_m *WishlistRepository) UpsertWishlist(ctx context.Context, wishlist *models.RemoteWishlistRecord) error {
	ret := _m.Called(ctx, wishlist)

	return ret.Error(0)
}

// NewWishlistRepository creates a new instance of WishlistRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewWishlistRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *WishlistRepository {
	m := &WishlistRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
