package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
	domain "github.com/x-xyz/mintingkit/domain"
)

// ENS is a mock type for the ENS type
type ENS struct {
	mock.Mock
}

// Resolve provides a mock function with given fields: _a0, name
func (_m *ENS) Resolve(_a0 ctx.Ctx, name string) (domain.Address, error) {
	ret := _m.Called(_a0, name)
	return ret.Get(0).(domain.Address), ret.Error(1)
}

// ReverseResolve provides a mock function with given fields: _a0, address
func (_m *ENS) ReverseResolve(_a0 ctx.Ctx, address domain.Address) (string, error) {
	ret := _m.Called(_a0, address)
	return ret.String(0), ret.Error(1)
}
