package vouchers

import (
	"time"

	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// VoucherDTO is a voucher as the seller voucher pages show it.
type VoucherDTO struct {
	ID            string             `json:"id"`
	Code          string             `json:"code"`
	Type          enums.VoucherType  `json:"type,omitempty"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue types.Numeric      `json:"discount_value"`
	MinOrderValue *types.Numeric     `json:"min_order_value,omitempty"`
	StartDate     types.LocalTime    `json:"start_date"`
	EndDate       types.LocalTime    `json:"end_date"`
	ShopID        string             `json:"shop_id,omitempty"`
	ProductIDs    []string           `json:"product_ids"`
	Active        bool               `json:"active"`
}

// NewVoucherDTO maps a backend voucher; Active is evaluated at now.
func NewVoucherDTO(v backend.Voucher, now time.Time) VoucherDTO {
	ids := v.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	return VoucherDTO{
		ID:            v.ID,
		Code:          v.Code,
		Type:          v.Type,
		DiscountType:  v.DiscountType,
		DiscountValue: v.DiscountValue,
		MinOrderValue: v.MinOrderValue,
		StartDate:     v.StartDate,
		EndDate:       v.EndDate,
		ShopID:        v.ShopID,
		ProductIDs:    ids,
		Active:        active(v, now),
	}
}

func newVoucherDTOs(list []backend.Voucher, now time.Time) []VoucherDTO {
	out := make([]VoucherDTO, 0, len(list))
	for _, v := range list {
		out = append(out, NewVoucherDTO(v, now))
	}
	return out
}

func active(v backend.Voucher, now time.Time) bool {
	if !v.StartDate.IsZero() && now.Before(v.StartDate.Time) {
		return false
	}
	if !v.EndDate.IsZero() && now.After(v.EndDate.Time) {
		return false
	}
	return true
}
