package project

import (
	"github.com/x-xyz/mintingkit/base/ctx"
)

// PaymentDetails describes how a project can be paid for in crypto
type PaymentDetails struct {
	EthAddress *string `json:"eth_address,omitempty"`
}

// Project is a mintable generative-art collection
type Project struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	PriceAmountCents int64           `json:"price_amount_cents"`
	PaymentDetails   *PaymentDetails `json:"payment_details,omitempty"`
}

// IsFree reports whether the project can be minted without a card payment
func (p *Project) IsFree() bool {
	return p.PriceAmountCents <= 0
}

// PaymentAddress returns the wallet accepting ETH payments, or "" if the project has none
func (p *Project) PaymentAddress() string {
	if p.PaymentDetails == nil || p.PaymentDetails.EthAddress == nil {
		return ""
	}
	return *p.PaymentDetails.EthAddress
}

// PaymentURI is the payload of the "Pay with ETH" QR code
func (p *Project) PaymentURI() string {
	addr := p.PaymentAddress()
	if addr == "" {
		return ""
	}
	return "ethereum:" + addr
}

type Usecase interface {
	// List returns the projects available to the authenticated device
	List(ctx ctx.Ctx) ([]*Project, error)
	Get(ctx ctx.Ctx, id string) (*Project, error)
	// FindByTitle matches titles case-insensitively
	FindByTitle(ctx ctx.Ctx, title string) (*Project, error)
	// FormatPrice renders the price in dollars, empty for free projects
	FormatPrice(p *Project) string
}
