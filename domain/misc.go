package domain

import (
	"strings"
)

// Table is a mongo collection name
type Table string

const (
	TableMintings Table = "mintings"
)

// Address is a hex wallet address
type Address string

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}
