package mocks

import (
	time "time"

	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
)

// Service is a mock type for the Service type
type Service struct {
	mock.Mock
}

// Get provides a mock function with given fields: context, key
func (_m *Service) Get(context ctx.Ctx, key string) ([]byte, error) {
	ret := _m.Called(context, key)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string) []byte); ok {
		r0 = rf(context, key)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// Set provides a mock function with given fields: context, key, val, expire
func (_m *Service) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	ret := _m.Called(context, key, val, expire)
	return ret.Error(0)
}

// SetNX provides a mock function with given fields: context, key, val, expire
func (_m *Service) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error) {
	ret := _m.Called(context, key, val, expire)
	return ret.Bool(0), ret.Error(1)
}

// Del provides a mock function with given fields: context, ks
func (_m *Service) Del(context ctx.Ctx, ks ...string) (int, error) {
	_va := make([]interface{}, len(ks))
	for _i := range ks {
		_va[_i] = ks[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, context)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)
	return ret.Int(0), ret.Error(1)
}

// Exists provides a mock function with given fields: context, key
func (_m *Service) Exists(context ctx.Ctx, key string) (bool, error) {
	ret := _m.Called(context, key)
	return ret.Bool(0), ret.Error(1)
}

// TTL provides a mock function with given fields: context, key
func (_m *Service) TTL(context ctx.Ctx, key string) (int, error) {
	ret := _m.Called(context, key)
	return ret.Int(0), ret.Error(1)
}

// Expire provides a mock function with given fields: context, key, ttl
func (_m *Service) Expire(context ctx.Ctx, key string, ttl time.Duration) error {
	ret := _m.Called(context, key, ttl)
	return ret.Error(0)
}

// Ping provides a mock function with given fields: context
func (_m *Service) Ping(context ctx.Ctx) error {
	ret := _m.Called(context)
	return ret.Error(0)
}

// Name provides a mock function with given fields:
func (_m *Service) Name() string {
	ret := _m.Called()
	return ret.String(0)
}
