package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/mintingkit/base/ctx"
	minting "github.com/x-xyz/mintingkit/domain/minting"
)

// Repo is a mock type for the Repo type
type Repo struct {
	mock.Mock
}

// Upsert provides a mock function with given fields: _a0, record
func (_m *Repo) Upsert(_a0 ctx.Ctx, record *minting.Record) error {
	ret := _m.Called(_a0, record)
	return ret.Error(0)
}

// Patch provides a mock function with given fields: _a0, id, patch
func (_m *Repo) Patch(_a0 ctx.Ctx, id string, patch *minting.RecordPatch) error {
	ret := _m.Called(_a0, id, patch)
	return ret.Error(0)
}

// FindOne provides a mock function with given fields: _a0, id
func (_m *Repo) FindOne(_a0 ctx.Ctx, id string) (*minting.Record, error) {
	ret := _m.Called(_a0, id)

	var r0 *minting.Record
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Record)
	}

	return r0, ret.Error(1)
}

// FindAll provides a mock function with given fields: _a0, opts
func (_m *Repo) FindAll(_a0 ctx.Ctx, opts ...minting.FindAllOptionsFunc) ([]*minting.Record, error) {
	ret := _m.Called(_a0, opts)

	var r0 []*minting.Record
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*minting.Record)
	}

	return r0, ret.Error(1)
}

// Notifier is a mock type for the Notifier type
type Notifier struct {
	mock.Mock
}

// NotifyRevealed provides a mock function with given fields: _a0, record
func (_m *Notifier) NotifyRevealed(_a0 ctx.Ctx, record *minting.Record) error {
	ret := _m.Called(_a0, record)
	return ret.Error(0)
}

// ReceiptArchive is a mock type for the ReceiptArchive type
type ReceiptArchive struct {
	mock.Mock
}

// Store provides a mock function with given fields: _a0, mintID, receipt
func (_m *ReceiptArchive) Store(_a0 ctx.Ctx, mintID string, receipt []byte) (string, error) {
	ret := _m.Called(_a0, mintID, receipt)
	return ret.String(0), ret.Error(1)
}

// Usecase is a mock type for the Usecase type
type Usecase struct {
	mock.Mock
}

// CheckMintable provides a mock function with given fields: _a0, projectID
func (_m *Usecase) CheckMintable(_a0 ctx.Ctx, projectID string) (*minting.Mintability, error) {
	ret := _m.Called(_a0, projectID)

	var r0 *minting.Mintability
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Mintability)
	}

	return r0, ret.Error(1)
}

// Mint provides a mock function with given fields: _a0, req
func (_m *Usecase) Mint(_a0 ctx.Ctx, req *minting.MintRequest) (*minting.Minting, error) {
	ret := _m.Called(_a0, req)

	var r0 *minting.Minting
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Minting)
	}

	return r0, ret.Error(1)
}

// Get provides a mock function with given fields: _a0, mintID
func (_m *Usecase) Get(_a0 ctx.Ctx, mintID string) (*minting.Minting, error) {
	ret := _m.Called(_a0, mintID)

	var r0 *minting.Minting
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Minting)
	}

	return r0, ret.Error(1)
}

// Watch provides a mock function with given fields: _a0, mintID, onUpdate
func (_m *Usecase) Watch(_a0 ctx.Ctx, mintID string, onUpdate func(minting.Progress)) (*minting.Minting, error) {
	ret := _m.Called(_a0, mintID, onUpdate)

	var r0 *minting.Minting
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string, func(minting.Progress)) *minting.Minting); ok {
		r0 = rf(_a0, mintID, onUpdate)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Minting)
	}

	return r0, ret.Error(1)
}

// Latest provides a mock function with given fields: _a0, projectID
func (_m *Usecase) Latest(_a0 ctx.Ctx, projectID string) (*minting.Minting, error) {
	ret := _m.Called(_a0, projectID)

	var r0 *minting.Minting
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Minting)
	}

	return r0, ret.Error(1)
}

// History provides a mock function with given fields: _a0, opts
func (_m *Usecase) History(_a0 ctx.Ctx, opts ...minting.FindAllOptionsFunc) ([]*minting.Record, error) {
	ret := _m.Called(_a0, opts)

	var r0 []*minting.Record
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*minting.Record)
	}

	return r0, ret.Error(1)
}
