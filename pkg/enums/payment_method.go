package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is the gateway-facing payment method identifier.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodBankCard PaymentMethod = "bank_card"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBankCard,
}

// the storefront backend stores the display label
var paymentMethodWireLabels = map[PaymentMethod]string{
	PaymentMethodCash:     "Tiền mặt",
	PaymentMethodBankCard: "Thẻ ngân hàng",
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// WireLabel returns the value sent to the storefront backend.
func (p PaymentMethod) WireLabel() string {
	return paymentMethodWireLabels[p]
}

// RequiresBankAccount reports whether the method needs a bank account on file.
func (p PaymentMethod) RequiresBankAccount() bool {
	return p == PaymentMethodBankCard
}

// ParsePaymentMethod accepts either the identifier or the backend label.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validPaymentMethods {
		if strings.EqualFold(string(candidate), trimmed) || paymentMethodWireLabels[candidate] == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
