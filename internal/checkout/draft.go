package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-gateway/internal/cart"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// Draft is the order being assembled for a session.
type Draft struct {
	RecipientName   string                  `json:"recipient_name"`
	PhoneNumber     string                  `json:"phone_number"`
	ShippingAddress string                  `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod     `json:"payment_method"`
	BankAccount     *types.BankAccount      `json:"bank_account,omitempty"`
	SavedAddresses  []types.ShippingAddress `json:"saved_addresses,omitempty"`
	Lines           []Line                  `json:"lines"`
	IsBuyNow        bool                    `json:"is_buy_now"`
	Total           decimal.Decimal         `json:"total"`
	TotalFormatted  string                  `json:"total_formatted"`
	Issues          []string                `json:"issues,omitempty"`
	Submitting      bool                    `json:"submitting"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// Line is one product in the draft.
type Line struct {
	ProductID      string               `json:"product_id"`
	Name           string               `json:"name"`
	ImageURL       string               `json:"image_url,omitempty"`
	ShopName       string               `json:"shop_name,omitempty"`
	Price          types.Numeric        `json:"price"`
	Quantity       int                  `json:"quantity"`
	Stock          int                  `json:"stock"`
	VoucherID      string               `json:"voucher_id,omitempty"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Discount       decimal.Decimal      `json:"discount"`
	Total          decimal.Decimal      `json:"total"`
	TotalFormatted string               `json:"total_formatted"`
	Vouchers       []cart.VoucherOption `json:"vouchers"`
}

// Patch edits the recipient and payment fields; nil fields are left alone.
// AddressID copies one of the saved addresses into ShippingAddress.
type Patch struct {
	RecipientName   *string
	PhoneNumber     *string
	ShippingAddress *string
	AddressID       *string
	PaymentMethod   *enums.PaymentMethod
}

// Result is returned once an order is placed.
type Result struct {
	OrderID        string          `json:"order_id"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	IsBuyNow       bool            `json:"is_buy_now"`
}
