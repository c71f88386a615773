package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
	session "github.com/x-xyz/mintingkit/domain/session"
)

// Usecase is a mock type for the Usecase type
type Usecase struct {
	mock.Mock
}

// LoginURL provides a mock function with given fields:
func (_m *Usecase) LoginURL() string {
	ret := _m.Called()
	return ret.String(0)
}

// HandleCallback provides a mock function with given fields: _a0, callbackURL
func (_m *Usecase) HandleCallback(_a0 ctx.Ctx, callbackURL string) (*session.Grant, error) {
	ret := _m.Called(_a0, callbackURL)

	var r0 *session.Grant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*session.Grant)
	}

	return r0, ret.Error(1)
}

// Restore provides a mock function with given fields: _a0, credential
func (_m *Usecase) Restore(_a0 ctx.Ctx, credential string) (*session.Grant, error) {
	ret := _m.Called(_a0, credential)

	var r0 *session.Grant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*session.Grant)
	}

	return r0, ret.Error(1)
}

// Token provides a mock function with given fields: _a0
func (_m *Usecase) Token(_a0 ctx.Ctx) (string, error) {
	ret := _m.Called(_a0)
	return ret.String(0), ret.Error(1)
}

// Unlock provides a mock function with given fields: _a0, credential
func (_m *Usecase) Unlock(_a0 ctx.Ctx, credential string) error {
	ret := _m.Called(_a0, credential)
	return ret.Error(0)
}

// Logout provides a mock function with given fields: _a0
func (_m *Usecase) Logout(_a0 ctx.Ctx) error {
	ret := _m.Called(_a0)
	return ret.Error(0)
}

// ParseToken provides a mock function with given fields: _a0, token
func (_m *Usecase) ParseToken(_a0 ctx.Ctx, token string) (string, error) {
	ret := _m.Called(_a0, token)
	return ret.String(0), ret.Error(1)
}
