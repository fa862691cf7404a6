package enums

import (
	"fmt"
	"strings"
)

// DiscountType selects how a voucher's discount value is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixed,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	normalized := DiscountType(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validDiscountTypes {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
