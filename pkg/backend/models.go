package backend

import (
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// Product is the backend product record; cart reads also carry Quantity.
type Product struct {
	ID               string          `json:"_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Price            types.Numeric   `json:"price"`
	Stock            int             `json:"stock"`
	ImageURL         string          `json:"image_url,omitempty"`
	Category         string          `json:"category,omitempty"`
	ShopID           string          `json:"shop_id,omitempty"`
	ShopName         string          `json:"shop_name,omitempty"`
	Quantity         types.Numeric   `json:"quantity"`
	PurchaseCount    int             `json:"purchaseCount,omitempty"`
	Viewed           bool            `json:"viewed,omitempty"`
	InteractionCount int             `json:"interactionCount,omitempty"`
	CreatedAt        types.LocalTime `json:"created_at"`
	UpdatedAt        types.LocalTime `json:"updated_at"`
}

// ProductInput is the seller create/update body.
type ProductInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Price       types.Numeric `json:"price"`
	Stock       int           `json:"stock"`
	ImageURL    string        `json:"image_url,omitempty"`
	Category    string        `json:"category"`
}

// Voucher is the backend voucher record.
type Voucher struct {
	ID            string             `json:"id,omitempty"`
	Code          string             `json:"code"`
	Type          enums.VoucherType  `json:"type,omitempty"`
	DiscountType  enums.DiscountType `json:"discountType"`
	DiscountValue types.Numeric      `json:"discountValue"`
	MinOrderValue *types.Numeric     `json:"minOrderValue,omitempty"`
	StartDate     types.LocalTime    `json:"startDate"`
	EndDate       types.LocalTime    `json:"endDate"`
	ShopID        string             `json:"shopId,omitempty"`
	ProductIDs    []string           `json:"productIds"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID   string        `json:"product_id"`
	Quantity    int           `json:"quantity"`
	Price       types.Numeric `json:"price"`
	VoucherID   string        `json:"voucherId,omitempty"`
	ProductName string        `json:"product_name,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
}

// Order is the backend order record.
type Order struct {
	ID              string             `json:"_id"`
	CustomerID      string             `json:"customer_id"`
	FullName        string             `json:"fullName"`
	PhoneNumber     string             `json:"phoneNumber"`
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	BankAccount     *types.BankAccount `json:"bankAccount,omitempty"`
	Status          string             `json:"status"`
	Total           types.Numeric      `json:"total"`
	Items           []OrderItem        `json:"items"`
	CreatedAt       types.LocalTime    `json:"created_at"`
	UpdatedAt       types.LocalTime    `json:"updated_at"`
}

// ProductIDs lists the products in the order.
func (o Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// OrderStatistics is the seller dashboard summary.
type OrderStatistics struct {
	TotalOrders        int            `json:"totalOrders"`
	CompletedOrders    int            `json:"completedOrders"`
	StatusDistribution map[string]int `json:"statusDistribution"`
	TotalRevenue       types.Numeric  `json:"totalRevenue"`
	RecentOrders       int            `json:"recentOrders"`
}

// ChartPoint is one bucket of the revenue chart.
type ChartPoint struct {
	Name            string        `json:"name"`
	Revenue         types.Numeric `json:"revenue"`
	Orders          int           `json:"orders"`
	CompletedOrders int           `json:"completedOrders"`
	CancelledOrders int           `json:"cancelledOrders"`
}

// RevenueChart is the chart endpoint envelope.
type RevenueChart struct {
	Period string       `json:"period"`
	Data   []ChartPoint `json:"data"`
}

// BuyerProfile is present for every account; its sub-objects are optional.
type BuyerProfile struct {
	PhoneNumber    string                  `json:"phoneNumber,omitempty"`
	Addresses      []types.ShippingAddress `json:"addresses,omitempty"`
	PrimaryAddress *types.Address          `json:"primaryAddress,omitempty"`
	BankAccount    *types.BankAccount      `json:"bankAccount,omitempty"`
}

// SellerProfile is present only for sellers.
type SellerProfile struct {
	ShopID        string             `json:"shopId,omitempty"`
	BusinessType  string             `json:"businessType,omitempty"`
	ShopName      string             `json:"shopName,omitempty"`
	ShopLogoURL   string             `json:"shopLogoUrl,omitempty"`
	PhoneNumber   string             `json:"phoneNumber,omitempty"`
	PickupAddress *types.Address     `json:"pickupAddress,omitempty"`
	BankAccount   *types.BankAccount `json:"bankAccount,omitempty"`
}

// UserProfile is the /users/me payload.
type UserProfile struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	FullName      string         `json:"fullName"`
	Roles         []string       `json:"roles"`
	BuyerProfile  *BuyerProfile  `json:"buyerProfile,omitempty"`
	SellerProfile *SellerProfile `json:"sellerProfile,omitempty"`
}

// ParsedRoles returns the known roles of the profile.
func (u UserProfile) ParsedRoles() []enums.Role {
	return enums.ParseRoles(u.Roles)
}

// BecomeSellerRequest opens a shop for the current user.
type BecomeSellerRequest struct {
	ShopName      string             `json:"shopName"`
	PhoneNumber   string             `json:"phoneNumber"`
	PickupAddress *types.Address     `json:"pickupAddress,omitempty"`
	BankAccount   *types.BankAccount `json:"bankAccount,omitempty"`
	ShopLogoURL   string             `json:"shopLogoUrl,omitempty"`
	BusinessType  string             `json:"businessType,omitempty"`
}

// UpdateBuyerProfileRequest edits the buyer side of the profile.
type UpdateBuyerProfileRequest struct {
	PhoneNumber    string             `json:"phoneNumber,omitempty"`
	PrimaryAddress *types.Address     `json:"primaryAddress,omitempty"`
	BankAccount    *types.BankAccount `json:"bankAccount,omitempty"`
}

// UpdateSellerProfileRequest edits the seller side of the profile.
type UpdateSellerProfileRequest struct {
	ShopName      string             `json:"shopName,omitempty"`
	PhoneNumber   string             `json:"phoneNumber,omitempty"`
	PickupAddress *types.Address     `json:"pickupAddress,omitempty"`
	BankAccount   *types.BankAccount `json:"bankAccount,omitempty"`
}

// OrderItemRequest is one line of an order creation request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	VoucherID string `json:"voucherId,omitempty"`
}

// CreateOrderRequest is the order creation body. PaymentMethod carries the wire label.
type CreateOrderRequest struct {
	FullName        string             `json:"fullName"`
	PhoneNumber     string             `json:"phoneNumber"`
	ShippingAddress string             `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	BankAccount     *types.BankAccount `json:"bankAccount"`
	Items           []OrderItemRequest `json:"items"`
	IsBuyNow        bool               `json:"isBuyNow"`
}

// SellerOrderFilter narrows the seller order list. Dates are YYYY-MM-DD.
type SellerOrderFilter struct {
	Status    string
	StartDate string
	EndDate   string
}

// ProductQuery drives list and search calls.
type ProductQuery struct {
	Keyword  string
	Category string
	Sort     enums.ProductSort
}

// HasFilters reports whether a search call is needed instead of a plain listing.
func (q ProductQuery) HasFilters() bool {
	return q.Keyword != "" || q.Category != "" || q.Sort != ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cartAddRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	VoucherID string `json:"voucherId,omitempty"`
}

type cartRemoveRequest struct {
	ProductID string `json:"productId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type voucherProductRequest struct {
	VoucherID string `json:"voucherId"`
	ProductID string `json:"productId"`
}

type wrapped[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}
