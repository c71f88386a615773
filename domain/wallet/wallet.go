package wallet

import (
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
)

// Source tells how a destination was resolved
type Source string

const (
	SourceAddress  Source = "address"
	SourceQRCode   Source = "qrcode"
	SourceEns      Source = "ens"
	SourceEnsChain Source = "ens-chain"
)

// Destination is the wallet a minted token is sent to
type Destination struct {
	Input   string         `json:"input"`
	Address domain.Address `json:"address"`
	Source  Source         `json:"source"`
	EnsName string         `json:"ensName,omitempty"`
}

// ResolveRequest carries free text typed or scanned by the collector
type ResolveRequest struct {
	Input string `json:"input" validate:"required"`
}

type Usecase interface {
	// Resolve turns an address, an ethereum: QR payload or an ENS name into a checksummed address
	Resolve(ctx ctx.Ctx, input string) (*Destination, error)
}
