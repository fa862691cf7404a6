package types

import "strings"

// Address is the street/ward/district/city shape used by buyer and seller profiles.
type Address struct {
	Street   string `json:"street"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
}

// Format renders the address as "street, ward, district, city", skipping blank parts.
func (a *Address) Format() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, part := range []string{a.Street, a.Ward, a.District, a.City} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether no component is populated.
func (a *Address) IsEmpty() bool {
	return a.Format() == ""
}

// ShippingAddress is one saved delivery address on a buyer profile.
type ShippingAddress struct {
	AddressID     string `json:"addressId,omitempty"`
	ReceiverName  string `json:"receiverName,omitempty"`
	ReceiverPhone string `json:"receiverPhone,omitempty"`
	Street        string `json:"street"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`
	IsDefault     bool   `json:"isDefault"`
}

func (s *ShippingAddress) Address() *Address {
	if s == nil {
		return nil
	}
	return &Address{Street: s.Street, Ward: s.Ward, District: s.District, City: s.City}
}

// BankAccount is the optional payout/payment account on a profile.
type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
}

// IsComplete reports whether the account can be used for card payments.
func (b *BankAccount) IsComplete() bool {
	if b == nil {
		return false
	}
	return strings.TrimSpace(b.BankName) != "" && strings.TrimSpace(b.AccountNumber) != ""
}
