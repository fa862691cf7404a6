package enums

import "testing"

func TestParseOrderStatusIsCaseInsensitive(t *testing.T) {
	got, err := ParseOrderStatus(" shipping ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusShipping {
		t.Fatalf("expected SHIPPING, got %s", got)
	}
	if _, err := ParseOrderStatus("ALL"); err == nil {
		t.Fatalf("ALL is a filter, not a status")
	}
}

func TestParseOrderStatusFilter(t *testing.T) {
	for _, raw := range []string{"", "all", "ALL"} {
		got, err := ParseOrderStatusFilter(raw)
		if err != nil || got != OrderStatusAll {
			t.Fatalf("expected ALL for %q, got %s (%v)", raw, got, err)
		}
	}
	if _, err := ParseOrderStatusFilter("RETURNED"); err == nil {
		t.Fatalf("expected unknown filter to fail")
	}
}

func TestOrderStatusLabel(t *testing.T) {
	if got := OrderStatus("delivered").Label(); got != "Đã giao hàng" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := OrderStatus("RETURNED").Label(); got != "RETURNED" {
		t.Fatalf("unknown status should fall back to raw value, got %q", got)
	}
}

func TestPaymentMethodWireLabels(t *testing.T) {
	method, err := ParsePaymentMethod("Thẻ ngân hàng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != PaymentMethodBankCard || !method.RequiresBankAccount() {
		t.Fatalf("expected bank card requiring an account, got %s", method)
	}
	if PaymentMethodCash.WireLabel() != "Tiền mặt" {
		t.Fatalf("unexpected cash label %q", PaymentMethodCash.WireLabel())
	}
	if _, err := ParsePaymentMethod("crypto"); err == nil {
		t.Fatalf("expected unknown payment method to fail")
	}
}

func TestParseRevenuePeriodDefaultsToMonthly(t *testing.T) {
	got, err := ParseRevenuePeriod("")
	if err != nil || got != RevenuePeriodMonthly {
		t.Fatalf("expected monthly default, got %s (%v)", got, err)
	}
	if _, err := ParseRevenuePeriod("daily"); err == nil {
		t.Fatalf("expected daily to be rejected")
	}
}

func TestParseRolesDropsUnknown(t *testing.T) {
	roles := ParseRoles([]string{"ROLE_BUYER", "ROLE_ADMIN", "ROLE_SELLER"})
	if len(roles) != 2 || !HasRole(roles, RoleSeller) {
		t.Fatalf("unexpected roles %v", roles)
	}
}

func TestDiscountTypeParse(t *testing.T) {
	if got, err := ParseDiscountType("percentage"); err != nil || got != DiscountTypePercentage {
		t.Fatalf("unexpected parse result %s (%v)", got, err)
	}
	if DiscountType("BOGO").IsValid() {
		t.Fatalf("BOGO should not be valid")
	}
}
