package mocks

import (
	mock "github.com/stretchr/testify/mock"

	ctx "github.com/x-xyz/mintingkit/base/ctx"
	domain "github.com/x-xyz/mintingkit/domain"
	minting "github.com/x-xyz/mintingkit/domain/minting"
	payment "github.com/x-xyz/mintingkit/domain/payment"
	project "github.com/x-xyz/mintingkit/domain/project"
)

// Client is a mock type for the Client type
type Client struct {
	mock.Mock
}

// ListProjects provides a mock function with given fields: _a0
func (_m *Client) ListProjects(_a0 ctx.Ctx) ([]*project.Project, error) {
	ret := _m.Called(_a0)

	var r0 []*project.Project
	if rf, ok := ret.Get(0).(func(ctx.Ctx) []*project.Project); ok {
		r0 = rf(_a0)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*project.Project)
	}

	return r0, ret.Error(1)
}

// LookupENS provides a mock function with given fields: _a0, name
func (_m *Client) LookupENS(_a0 ctx.Ctx, name string) (domain.Address, error) {
	ret := _m.Called(_a0, name)
	return ret.Get(0).(domain.Address), ret.Error(1)
}

// CheckMintable provides a mock function with given fields: _a0, projectID
func (_m *Client) CheckMintable(_a0 ctx.Ctx, projectID string) (*minting.Mintability, error) {
	ret := _m.Called(_a0, projectID)

	var r0 *minting.Mintability
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Mintability)
	}

	return r0, ret.Error(1)
}

// CreateMinting provides a mock function with given fields: _a0, projectID, wallet
func (_m *Client) CreateMinting(_a0 ctx.Ctx, projectID string, wallet domain.Address) (*minting.Minting, error) {
	ret := _m.Called(_a0, projectID, wallet)

	var r0 *minting.Minting
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Minting)
	}

	return r0, ret.Error(1)
}

// RetrieveMinting provides a mock function with given fields: _a0, mintID
func (_m *Client) RetrieveMinting(_a0 ctx.Ctx, mintID string) (*minting.Minting, error) {
	ret := _m.Called(_a0, mintID)

	var r0 *minting.Minting
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string) *minting.Minting); ok {
		r0 = rf(_a0, mintID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*minting.Minting)
	}

	return r0, ret.Error(1)
}

// ListMintings provides a mock function with given fields: _a0
func (_m *Client) ListMintings(_a0 ctx.Ctx) ([]*minting.Minting, error) {
	ret := _m.Called(_a0)

	var r0 []*minting.Minting
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*minting.Minting)
	}

	return r0, ret.Error(1)
}

// SubscribeMinting provides a mock function with given fields: _a0, mintID, onUpdate
func (_m *Client) SubscribeMinting(_a0 ctx.Ctx, mintID string, onUpdate func(*minting.Minting)) error {
	ret := _m.Called(_a0, mintID, onUpdate)

	if rf, ok := ret.Get(0).(func(ctx.Ctx, string, func(*minting.Minting)) error); ok {
		return rf(_a0, mintID, onUpdate)
	}
	return ret.Error(0)
}

// LoginURL provides a mock function with given fields:
func (_m *Client) LoginURL() string {
	ret := _m.Called()
	return ret.String(0)
}

// Ping provides a mock function with given fields: _a0
func (_m *Client) Ping(_a0 ctx.Ctx) error {
	ret := _m.Called(_a0)
	return ret.Error(0)
}

// ConnectionToken provides a mock function with given fields: _a0
func (_m *Client) ConnectionToken(_a0 ctx.Ctx) (string, error) {
	ret := _m.Called(_a0)
	return ret.String(0), ret.Error(1)
}

// CreatePaymentIntent provides a mock function with given fields: _a0, params
func (_m *Client) CreatePaymentIntent(_a0 ctx.Ctx, params *payment.IntentParams) (string, error) {
	ret := _m.Called(_a0, params)
	return ret.String(0), ret.Error(1)
}

// CapturePaymentIntent provides a mock function with given fields: _a0, intentID
func (_m *Client) CapturePaymentIntent(_a0 ctx.Ctx, intentID string) error {
	ret := _m.Called(_a0, intentID)
	return ret.Error(0)
}
