package pricefomatter

import (
	"strings"

	"github.com/shopspring/decimal"
)

type impl struct {
	symbol string
}

// NewPriceFormatter returns a formatter prefixing amounts with symbol, "$" when empty
func NewPriceFormatter(symbol string) PriceFormatter {
	if symbol == "" {
		symbol = "$"
	}
	return &impl{symbol: symbol}
}

func (f *impl) ToDisplayPrice(cents int64) decimal.Decimal {
	return decimal.New(cents, centsExp)
}

func (f *impl) FormatCents(cents int64) string {
	d := f.ToDisplayPrice(cents)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(-centsExp)
	parts := strings.SplitN(s, ".", 2)
	return sign + f.symbol + group(parts[0]) + "." + parts[1]
}

// group inserts thousands separators into a string of digits
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
