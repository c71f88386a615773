package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
)

// HealthCheckRepo is a mock type for the HealthCheckRepo type
type HealthCheckRepo struct {
	mock.Mock
}

// PingDB provides a mock function with given fields: context
func (_m *HealthCheckRepo) PingDB(context ctx.Ctx) error {
	ret := _m.Called(context)
	return ret.Error(0)
}

// PingCache provides a mock function with given fields: context
func (_m *HealthCheckRepo) PingCache(context ctx.Ctx) error {
	ret := _m.Called(context)
	return ret.Error(0)
}

// Pinger is a mock type for the Pinger type
type Pinger struct {
	mock.Mock
}

// Ping provides a mock function with given fields: context
func (_m *Pinger) Ping(context ctx.Ctx) error {
	ret := _m.Called(context)
	return ret.Error(0)
}
