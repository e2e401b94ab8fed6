package mocks

import (
	"context"

	"github.com/shopease/storefront/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// CatalogService is a mock type for the CatalogService type
type CatalogService struct {
	mock.Mock
}

// Search provides a mock function with given fields: ctx, term
func (_m *CatalogService) Search(ctx context.Context, term string) ([]*models.Product, error) {
	ret := _m.Called(ctx, term)

	var r0 []*models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Product)
	}

	return r0, ret.Error(1)
}

// GetProduct provides a mock function with given fields: ctx, id
func (_m *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

// CreateProduct provides a mock function with given fields: ctx, req
func (_m *CatalogService) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	ret := _m.Called(ctx, req)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

// UpdateProduct provides a mock function with given fields: ctx, id, req
func (_m *CatalogService) UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error) {
	ret := _m.Called(ctx, id, req)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

// DeleteProduct provides a mock function with given fields: ctx, id
func (_m *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)

	return ret.Error(0)
}

// NewCatalogService creates a new instance of CatalogService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCatalogService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CatalogService {
	m := &CatalogService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
