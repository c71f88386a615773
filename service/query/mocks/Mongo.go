package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
	domain "github.com/x-xyz/mintingkit/domain"
	query "github.com/x-xyz/mintingkit/service/query"
)

// Mongo is a mock type for the Mongo type
type Mongo struct {
	mock.Mock
}

// Insert provides a mock function with given fields: context, table, insert
func (_m *Mongo) Insert(context ctx.Ctx, table domain.Table, insert interface{}) error {
	ret := _m.Called(context, table, insert)
	return ret.Error(0)
}

// FindOne provides a mock function with given fields: context, table, _a2, result
func (_m *Mongo) FindOne(context ctx.Ctx, table domain.Table, _a2 interface{}, result interface{}) error {
	ret := _m.Called(context, table, _a2, result)
	return ret.Error(0)
}

// Count provides a mock function with given fields: context, table, selector
func (_m *Mongo) Count(context ctx.Ctx, table domain.Table, selector interface{}) (int, error) {
	ret := _m.Called(context, table, selector)
	return ret.Int(0), ret.Error(1)
}

// Upsert provides a mock function with given fields: context, table, selector, update
func (_m *Mongo) Upsert(context ctx.Ctx, table domain.Table, selector interface{}, update interface{}) error {
	ret := _m.Called(context, table, selector, update)
	return ret.Error(0)
}

// Search provides a mock function with given fields: context, table, offset, limit, sort, _a5, results
func (_m *Mongo) Search(context ctx.Ctx, table domain.Table, offset int, limit int, sort string, _a5 interface{}, results interface{}) error {
	ret := _m.Called(context, table, offset, limit, sort, _a5, results)
	return ret.Error(0)
}

// Remove provides a mock function with given fields: context, table, selector
func (_m *Mongo) Remove(context ctx.Ctx, table domain.Table, selector interface{}) error {
	ret := _m.Called(context, table, selector)
	return ret.Error(0)
}

// Patch provides a mock function with given fields: context, table, selector, update, ops
func (_m *Mongo) Patch(context ctx.Ctx, table domain.Table, selector interface{}, update interface{}, ops ...query.PatchOp) error {
	ret := _m.Called(context, table, selector, update, ops)
	return ret.Error(0)
}

// EnsureIndex provides a mock function with given fields: context, table, unique, keys
func (_m *Mongo) EnsureIndex(context ctx.Ctx, table domain.Table, unique bool, keys ...string) error {
	ret := _m.Called(context, table, unique, keys)
	return ret.Error(0)
}
