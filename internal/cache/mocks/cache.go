package mocks

import (
	"context"
	"time"

	mock "github.com/stretchr/testify/mock"
)

// Cache is a mock type for the Cache type
type Cache struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, key, value
func (_m *Cache) Get(ctx context.Context, key string, value any) (bool, error) {
	ret := _m.Called(ctx, key, value)

	return ret.Bool(0), ret.Error(1)
}

// Set provides a mock function with given fields: ctx, key, value, ttl
func (_m *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ret := _m.Called(ctx, key, value, ttl)

	return ret.Error(0)
}

// Delete provides a mock function with given fields: ctx, keys
func (_m *Cache) Delete(ctx context.Context, keys ...string) error {
	args := []any{ctx}
	for _, key := range keys {
		args = append(args, key)
	}

	ret := _m.Called(args...)

	return ret.Error(0)
}

// DeletePrefix provides a mock function with given fields: ctx, prefix
func (_m *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	ret := _m.Called(ctx, prefix)

	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *Cache) Close() error {
	ret := _m.Called()

	return ret.Error(0)
}

// NewCache creates a new instance of Cache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *Cache {
	m := &Cache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
