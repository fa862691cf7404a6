package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

func validInput() OrderInput {
	return OrderInput{
		RecipientName:   "Nguyen Van A",
		PhoneNumber:     "0901234567",
		ShippingAddress: "1 Le Loi, Ben Nghe, Quan 1, HCM",
		PaymentMethod:   enums.PaymentMethodCash,
		LineCount:       1,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	fields, ok := details["fields"].(map[string]string)
	require.True(t, ok)
	return fields
}

func TestValidateOrderAcceptsCompleteInput(t *testing.T) {
	if err := ValidateOrder(validInput()); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidateOrderReportsAllMissingFields(t *testing.T) {
	fields := fieldsOf(t, ValidateOrder(OrderInput{}))
	for _, key := range []string{"recipient_name", "phone_number", "shipping_address", "payment_method", "lines"} {
		assert.Contains(t, fields, key)
	}
}

func TestValidateOrderBankCardNeedsAccount(t *testing.T) {
	in := validInput()
	in.PaymentMethod = enums.PaymentMethodBankCard
	fields := fieldsOf(t, ValidateOrder(in))
	assert.Contains(t, fields, "bank_account")

	in.BankAccount = &types.BankAccount{BankName: "VCB", AccountNumber: "0123", AccountHolder: "A"}
	assert.NoError(t, ValidateOrder(in))
}

func TestValidPhone(t *testing.T) {
	cases := map[string]bool{
		"0901234567":     true,
		"+84 901 234 567": true,
		"090-123-4567":   true,
		"12345":          false,
		"09012abc67":     false,
		"":               false,
	}
	for phone, want := range cases {
		if got := ValidPhone(phone); got != want {
			t.Fatalf("ValidPhone(%q) = %v, want %v", phone, got, want)
		}
	}
}
