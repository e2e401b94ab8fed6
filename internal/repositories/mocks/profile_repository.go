package mocks

import (
	"context"

	"github.com/shopease/storefront/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// ProfileRepository is a mock type for the ProfileRepository type
type ProfileRepository struct {
	mock.Mock
}

// GetProfile provides a mock function with given fields: ctx, id
func (_m *ProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Profile)
	}

	return r0, ret.Error(1)
}

// UpsertProfile provides a mock function with given fields: ctx, profile
func (_m *ProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	ret := _m.Called(ctx, profile)

	return ret.Error(0)
}

// CountProfiles provides a mock function with given fields: ctx
func (_m *ProfileRepository) CountProfiles(ctx context.Context) (int, error) {
	ret := _m.Called(ctx)

	r0 := ret.Get(0).(int)

	return r0, ret.Error(1)
}

// RecentSignups provides a mock function with given fields: ctx, limit
func (_m *ProfileRepository) RecentSignups(ctx context.Context, limit int) ([]models.RecentSignup, error) {
	ret := _m.Called(ctx, limit)

	var r0 []models.RecentSignup
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.RecentSignup)
	}

	return r0, ret.Error(1)
}

// NewProfileRepository creates a new instance of ProfileRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProfileRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProfileRepository {
	m := &ProfileRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
