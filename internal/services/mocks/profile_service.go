package mocks

import (
	"context"

	"github.com/shopease/storefront/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// ProfileService is a mock type for the ProfileService type
type ProfileService struct {
	mock.Mock
}

// GetProfile provides a mock function with given fields: ctx, claims
func (_m *ProfileService) GetProfile(ctx context.Context, claims *models.Claims) (*models.Profile, error) {
	ret := _m.Called(ctx, claims)

	var r0 *models.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Profile)
	}

	return r0, ret.Error(1)
}

// UpdateProfile provides a mock function with given fields: ctx, claims, req
func (_m *ProfileService) UpdateProfile(ctx context.Context, claims *models.Claims, req *models.UpdateProfileRequest) (*models.Profile, error) {
	ret := _m.Called(ctx, claims, req)

	var r0 *models.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Profile)
	}

	return r0, ret.Error(1)
}

// NewProfileService creates a new instance of ProfileService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProfileService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProfileService {
	m := &ProfileService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
