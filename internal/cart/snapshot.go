package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/pricing"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// Snapshot is the priced cart view returned to the browser.
type Snapshot struct {
	Lines          []LineView      `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	SelectedCount  int             `json:"selected_count"`
	AllSelected    bool            `json:"all_selected"`
	Issues         []string        `json:"issues,omitempty"`
	FetchedAt      time.Time       `json:"fetched_at"`
}

// LineView is one priced cart line.
type LineView struct {
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	ImageURL          string          `json:"image_url,omitempty"`
	ShopName          string          `json:"shop_name,omitempty"`
	Price             types.Numeric   `json:"price"`
	Quantity          types.Numeric   `json:"quantity"`
	Stock             int             `json:"stock"`
	InStock           bool            `json:"in_stock"`
	Selected          bool            `json:"selected"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	TotalFormatted    string          `json:"total_formatted"`
	VoucherID         string          `json:"voucher_id,omitempty"`
	VoucherApplied    bool            `json:"voucher_applied"`
	VoucherIneligible bool            `json:"voucher_ineligible"`
	Vouchers          []VoucherOption `json:"vouchers"`
}

// VoucherOption is a voucher offered for a line, flagged with whether it can be chosen now.
type VoucherOption struct {
	ID            string             `json:"id"`
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue types.Numeric      `json:"discount_value"`
	MinOrderValue *types.Numeric     `json:"min_order_value,omitempty"`
	Eligible      bool               `json:"eligible"`
	Selected      bool               `json:"selected"`
}

// SelectedLine is a line chosen for checkout together with its voucher, if any.
type SelectedLine struct {
	Product  backend.Product
	Quantity int
	Voucher  *backend.Voucher
}

// PricingVoucher converts a backend voucher into its pricing view.
func PricingVoucher(v *backend.Voucher) *pricing.Voucher {
	if v == nil {
		return nil
	}
	return &pricing.Voucher{
		ID:            v.ID,
		Code:          v.Code,
		DiscountType:  v.DiscountType,
		DiscountValue: v.DiscountValue,
		MinOrderValue: v.MinOrderValue,
	}
}

// PricingLine converts a cart product into its pricing view.
func PricingLine(p backend.Product) pricing.Line {
	return pricing.Line{
		ProductID: p.ID,
		Price:     p.Price,
		Quantity:  p.Quantity,
		Stock:     p.Stock,
	}
}
