package cart

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	VoucherID string `json:"voucher_id"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type selectAllRequest struct {
	Selected *bool `json:"selected" validate:"required"`
}

// An empty voucher id clears the choice.
type selectVoucherRequest struct {
	VoucherID string `json:"voucher_id"`
}
