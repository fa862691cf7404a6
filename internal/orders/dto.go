package orders

import (
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/pricing"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// OrderDTO is an order as shown on the customer and seller order pages.
type OrderDTO struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id,omitempty"`
	FullName           string             `json:"full_name"`
	PhoneNumber        string             `json:"phone_number"`
	ShippingAddress    string             `json:"shipping_address"`
	PaymentMethod      string             `json:"payment_method"`
	BankAccount        *types.BankAccount `json:"bank_account,omitempty"`
	Status             string             `json:"status"`
	StatusLabel        string             `json:"status_label"`
	Total              types.Numeric      `json:"total"`
	TotalFormatted     string             `json:"total_formatted"`
	Items              []ItemDTO          `json:"items"`
	CanCancel          bool               `json:"can_cancel"`
	CanConfirmDelivery bool               `json:"can_confirm_delivery"`
	CreatedAt          types.LocalTime    `json:"created_at"`
	UpdatedAt          types.LocalTime    `json:"updated_at"`
}

// ItemDTO is one order line.
type ItemDTO struct {
	ProductID      string        `json:"product_id"`
	ProductName    string        `json:"product_name,omitempty"`
	ImageURL       string        `json:"image_url,omitempty"`
	Quantity       int           `json:"quantity"`
	Price          types.Numeric `json:"price"`
	PriceFormatted string        `json:"price_formatted"`
	VoucherID      string        `json:"voucher_id,omitempty"`
}

// StatisticsDTO is the seller order summary.
type StatisticsDTO struct {
	TotalOrders           int            `json:"total_orders"`
	CompletedOrders       int            `json:"completed_orders"`
	RecentOrders          int            `json:"recent_orders"`
	TotalRevenue          types.Numeric  `json:"total_revenue"`
	TotalRevenueFormatted string         `json:"total_revenue_formatted"`
	StatusDistribution    map[string]int `json:"status_distribution"`
}

// NewOrderDTO maps a backend order.
func NewOrderDTO(o backend.Order) OrderDTO {
	status := enums.OrderStatus(o.Status)
	dto := OrderDTO{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		FullName:        o.FullName,
		PhoneNumber:     o.PhoneNumber,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		BankAccount:     o.BankAccount,
		Status:          o.Status,
		StatusLabel:     status.Label(),
		Total:           o.Total,
		TotalFormatted:  formatNumeric(o.Total),
		Items:           make([]ItemDTO, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if parsed, err := enums.ParseOrderStatus(o.Status); err == nil {
		dto.CanCancel = parsed == enums.OrderStatusPending || parsed == enums.OrderStatusConfirmed
		dto.CanConfirmDelivery = parsed == enums.OrderStatusShipping
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			Price:          item.Price,
			PriceFormatted: formatNumeric(item.Price),
			VoucherID:      item.VoucherID,
		})
	}
	return dto
}

func newOrderDTOs(list []backend.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, NewOrderDTO(o))
	}
	return out
}

// NewStatisticsDTO maps the seller statistics payload.
func NewStatisticsDTO(s backend.OrderStatistics) StatisticsDTO {
	dist := s.StatusDistribution
	if dist == nil {
		dist = map[string]int{}
	}
	return StatisticsDTO{
		TotalOrders:           s.TotalOrders,
		CompletedOrders:       s.CompletedOrders,
		RecentOrders:          s.RecentOrders,
		TotalRevenue:          s.TotalRevenue,
		TotalRevenueFormatted: formatNumeric(s.TotalRevenue),
		StatusDistribution:    dist,
	}
}

func formatNumeric(n types.Numeric) string {
	if d, ok := n.Decimal(); ok {
		return pricing.FormatVND(d)
	}
	return ""
}
