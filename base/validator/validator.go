package validator

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// TagEthAddress is the struct tag registered by NewCustomValidator for hex wallet addresses
const TagEthAddress = "ethaddr"

// IsValidAddress returns is an address valid or not
func IsValidAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	checksum := common.HexToAddress(address).Hex()
	return strings.ToLower(checksum) == strings.ToLower(address)
}

// ChecksumAddress returns the EIP-55 form of a hex address
func ChecksumAddress(address string) (string, bool) {
	if !IsValidAddress(address) {
		return "", false
	}
	return common.HexToAddress(address).Hex(), true
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	v.RegisterValidation(TagEthAddress, func(fl validator.FieldLevel) bool {
		return IsValidAddress(fl.Field().String())
	})
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
