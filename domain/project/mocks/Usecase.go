package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
	project "github.com/x-xyz/mintingkit/domain/project"
)

// Usecase is a mock type for the Usecase type
type Usecase struct {
	mock.Mock
}

// List provides a mock function with given fields: _a0
func (_m *Usecase) List(_a0 ctx.Ctx) ([]*project.Project, error) {
	ret := _m.Called(_a0)

	var r0 []*project.Project
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*project.Project)
	}

	return r0, ret.Error(1)
}

// Get provides a mock function with given fields: _a0, id
func (_m *Usecase) Get(_a0 ctx.Ctx, id string) (*project.Project, error) {
	ret := _m.Called(_a0, id)

	var r0 *project.Project
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*project.Project)
	}

	return r0, ret.Error(1)
}

// FindByTitle provides a mock function with given fields: _a0, title
func (_m *Usecase) FindByTitle(_a0 ctx.Ctx, title string) (*project.Project, error) {
	ret := _m.Called(_a0, title)

	var r0 *project.Project
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*project.Project)
	}

	return r0, ret.Error(1)
}

// FormatPrice provides a mock function with given fields: p
func (_m *Usecase) FormatPrice(p *project.Project) string {
	ret := _m.Called(p)
	return ret.String(0)
}
