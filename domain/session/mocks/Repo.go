package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
	session "github.com/x-xyz/mintingkit/domain/session"
)

// Repo is a mock type for the Repo type
type Repo struct {
	mock.Mock
}

// Get provides a mock function with given fields: _a0
func (_m *Repo) Get(_a0 ctx.Ctx) (*session.Session, error) {
	ret := _m.Called(_a0)

	var r0 *session.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*session.Session)
	}

	return r0, ret.Error(1)
}

// Save provides a mock function with given fields: _a0, s
func (_m *Repo) Save(_a0 ctx.Ctx, s *session.Session) error {
	ret := _m.Called(_a0, s)
	return ret.Error(0)
}

// Delete provides a mock function with given fields: _a0
func (_m *Repo) Delete(_a0 ctx.Ctx) error {
	ret := _m.Called(_a0)
	return ret.Error(0)
}

// Unlocker is a mock type for the Unlocker type
type Unlocker struct {
	mock.Mock
}

// Unlock provides a mock function with given fields: _a0, reason, credential
func (_m *Unlocker) Unlock(_a0 ctx.Ctx, reason string, credential string) (bool, error) {
	ret := _m.Called(_a0, reason, credential)
	return ret.Bool(0), ret.Error(1)
}
