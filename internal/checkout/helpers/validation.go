package helpers

import (
	"strings"

	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// OrderInput is what an order submission needs before it may be sent.
type OrderInput struct {
	RecipientName   string
	PhoneNumber     string
	ShippingAddress string
	PaymentMethod   enums.PaymentMethod
	BankAccount     *types.BankAccount
	LineCount       int
}

// ValidateOrder reports every missing field at once.
func ValidateOrder(in OrderInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.RecipientName) == "" {
		fields["recipient_name"] = "is required"
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		fields["phone_number"] = "is required"
	} else if !ValidPhone(in.PhoneNumber) {
		fields["phone_number"] = "must contain 9 to 11 digits"
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		fields["shipping_address"] = "is required"
	}
	switch {
	case in.PaymentMethod == "":
		fields["payment_method"] = "is required"
	case !in.PaymentMethod.IsValid():
		fields["payment_method"] = "is not supported"
	case in.PaymentMethod.RequiresBankAccount() && !in.BankAccount.IsComplete():
		fields["bank_account"] = "add a bank account to your profile to pay by card"
	}
	if in.LineCount == 0 {
		fields["lines"] = "select at least one product"
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "order details are incomplete").
		WithDetails(map[string]any{"fields": fields})
}

// ValidPhone accepts digits with optional spaces, dots, dashes and a leading +.
func ValidPhone(phone string) bool {
	digits := 0
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '.' || r == '-':
		default:
			return false
		}
	}
	return digits >= 9 && digits <= 11
}
