package ens

import (
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
)

// ENS resolves names against the ENS registry on chain
type ENS interface {
	// Resolve returns domain.ErrEnsNotFound for unregistered names
	Resolve(ctx ctx.Ctx, name string) (domain.Address, error)
	// ReverseResolve returns "" when the address has no primary name
	ReverseResolve(ctx ctx.Ctx, address domain.Address) (string, error)
}
