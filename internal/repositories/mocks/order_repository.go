package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopspring/decimal"
	mock "github.com/stretchr/testify/mock"
)

// OrderRepository is a mock type for the OrderRepository type
type OrderRepository struct {
	mock.Mock
}

// CreateOrder provides a mock function with given fields: ctx, order
func (_m *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	ret := _m.Called(ctx, order)

	return ret.Error(0)
}

// ListOrdersByUser provides a mock function with given fields: ctx, userID
func (_m *OrderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	ret := _m.Called(ctx, userID)

	var r0 []*models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Order)
	}

	return r0, ret.Error(1)
}

// ListAllOrders provides a mock function with given fields: ctx
func (_m *OrderRepository) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	ret := _m.Called(ctx)

	var r0 []*models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Order)
	}

	return r0, ret.Error(1)
}

// UpdateOrderStatus provides a mock function with given fields: ctx, id, status
func (_m *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	ret := _m.Called(ctx, id, status)

	var r0 *models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Order)
	}

	return r0, ret.Error(1)
}

// DeleteOrder provides a mock function with given fields: ctx, id
func (_m *OrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)

	return ret.Error(0)
}

// GetOrderTotals provides a mock function with given fields: ctx
func (_m *OrderRepository) GetOrderTotals(ctx context.Context) (decimal.Decimal, int, error) {
	ret := _m.Called(ctx)

	r0 := ret.Get(0).(decimal.Decimal)
	r1 := ret.Get(1).(int)

	return r0, r1, ret.Error(2)
}

// NewOrderRepository creates a new instance of OrderRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
