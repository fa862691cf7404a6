package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the server-owned lifecycle of a storefront order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"

	// OrderStatusAll is the list filter value meaning "no status filter".
	OrderStatusAll OrderStatus = "ALL"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Chờ xác nhận",
	OrderStatusConfirmed: "Đã xác nhận",
	OrderStatusShipping:  "Đang giao hàng",
	OrderStatusDelivered: "Đã giao hàng",
	OrderStatusCancelled: "Đã hủy",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus. ALL is a filter, not a status.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Label returns the display label, or the raw value for statuses the gateway does not know.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[OrderStatus(strings.ToUpper(string(s)))]; ok {
		return label
	}
	return string(s)
}

// ParseOrderStatus converts raw input into an OrderStatus, case-insensitively.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validOrderStatuses {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// ParseOrderStatusFilter accepts any status plus ALL; blank means ALL.
func ParseOrderStatusFilter(value string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if normalized == "" || normalized == string(OrderStatusAll) {
		return OrderStatusAll, nil
	}
	return ParseOrderStatus(normalized)
}
