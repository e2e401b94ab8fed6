package mocks

import (
	"context"

	"github.com/shopease/storefront/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// ProductRepository is a mock type for the ProductRepository type
type ProductRepository struct {
	mock.Mock
}

// SearchProducts provides a mock function with given fields: ctx, term
func (_m *ProductRepository) SearchProducts(ctx context.Context, term string) ([]*models.Product, error) {
	ret := _m.Called(ctx, term)

	var r0 []*models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Product)
	}

	return r0, ret.Error(1)
}

// GetProductByID provides a mock function with given fields: ctx, id
func (_m *ProductRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

// CreateProduct provides a mock function with given fields: ctx, product
func (_m *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	ret := _m.Called(ctx, product)

	return ret.Error(0)
}

// UpdateProduct provides a mock function with given fields: ctx, product
func (_m *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	ret := _m.Called(ctx, product)

	return ret.Error(0)
}

// DeleteProduct provides a mock function with given fields: ctx, id
func (_m *ProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)

	return ret.Error(0)
}

// NewProductRepository creates a new instance of ProductRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProductRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProductRepository {
	m := &ProductRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
