package enums

import (
	"fmt"
	"strings"
)

// VoucherType scopes who issued a voucher.
type VoucherType string

const (
	VoucherTypeShop     VoucherType = "SHOP"
	VoucherTypePlatform VoucherType = "PLATFORM"
)

var validVoucherTypes = []VoucherType{
	VoucherTypeShop,
	VoucherTypePlatform,
}

// String implements fmt.Stringer.
func (v VoucherType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VoucherType.
func (v VoucherType) IsValid() bool {
	for _, candidate := range validVoucherTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoucherType converts raw input into a VoucherType.
func ParseVoucherType(value string) (VoucherType, error) {
	normalized := VoucherType(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validVoucherTypes {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher type %q", value)
}
