package mocks

import (
	"context"

	"github.com/shopease/storefront/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// CartRepository is a mock type for the CartRepository type
type CartRepository struct {
	mock.Mock
}

// GetCartByUserID provides a mock function with given fields: ctx, userID
func (_m *CartRepository) GetCartByUserID(ctx context.Context, userID string) (*models.RemoteCartRecord, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.RemoteCartRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.RemoteCartRecord)
	}

	return r0, ret.Error(1)
}

// UpsertCart provides a mock function with given fields: ctx, cart
func (_m *CartRepository) UpsertCart(ctx context.Context, cart *models.RemoteCartRecord) error {
	ret := _m.Called(ctx, cart)

	return ret.Error(0)
}

// NewCartRepository creates a new instance of CartRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCartRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartRepository {
	m := &CartRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
