package pricefomatter

import (
	"github.com/shopspring/decimal"
)

const centsExp = -2

type PriceFormatter interface {
	// FormatCents renders an amount of cents as "$1,234.50"
	FormatCents(cents int64) string
	// ToDisplayPrice converts cents into a dollar decimal
	ToDisplayPrice(cents int64) decimal.Decimal
}
