package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopease/storefront/internal/models"
	service "github.com/shopease/storefront/internal/services"
	mock "github.com/stretchr/testify/mock"
)

// OrderService is a mock type for the OrderService type
type OrderService struct {
	mock.Mock
}

// PlaceOrder provides a mock function with given fields: ctx, userID, checkout, address
func (_m *OrderService) PlaceOrder(ctx context.Context, userID string, checkout service.Checkout, address models.ShippingAddress) (*models.Order, error) {
	ret := _m.Called(ctx, userID, checkout, address)

	var r0 *models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Order)
	}

	return r0, ret.Error(1)
}

// ListMyOrders provides a mock function with given fields: ctx, userID
func (_m *OrderService) ListMyOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	ret := _m.Called(ctx, userID)

	var r0 []*models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Order)
	}

	return r0, ret.Error(1)
}

// ListAllOrders provides a mock function with given fields: ctx
func (_m *OrderService) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	ret := _m.Called(ctx)

	var r0 []*models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Order)
	}

	return r0, ret.Error(1)
}

// UpdateOrderStatus provides a mock function with given fields: ctx, id, status
func (_m *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	ret := _m.Called(ctx, id, status)

	var r0 *models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Order)
	}

	return r0, ret.Error(1)
}

// DeleteOrder provides a mock function with given fields: ctx, id
func (_m *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)

	return ret.Error(0)
}

// Stats provides a mock function with given fields: ctx
func (_m *OrderService) Stats(ctx context.Context) *models.DashboardStats {
	ret := _m.Called(ctx)

	var r0 *models.DashboardStats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.DashboardStats)
	}

	return r0
}

// RecentSignups provides a mock function with given fields: ctx
func (_m *OrderService) RecentSignups(ctx context.Context) []models.RecentSignup {
	ret := _m.Called(ctx)

	var r0 []models.RecentSignup
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.RecentSignup)
	}

	return r0
}

// NewOrderService creates a new instance of OrderService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderService(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderService {
	m := &OrderService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
