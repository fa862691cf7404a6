package catalog

import (
	"time"

	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/pricing"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// ProductDTO is the product payload returned to the browser.
type ProductDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          types.Numeric   `json:"price"`
	PriceFormatted string          `json:"price_formatted"`
	Stock          int             `json:"stock"`
	InStock        bool            `json:"in_stock"`
	ImageURL       string          `json:"image_url,omitempty"`
	Category       string          `json:"category,omitempty"`
	ShopID         string          `json:"shop_id,omitempty"`
	ShopName       string          `json:"shop_name,omitempty"`
	PurchaseCount  int             `json:"purchase_count"`
	CreatedAt      types.LocalTime `json:"created_at"`
}

// ProductDetail is a product with its similar products.
type ProductDetail struct {
	Product ProductDTO   `json:"product"`
	Similar []ProductDTO `json:"similar"`
}

// NewProductDTO maps a backend product.
func NewProductDTO(p backend.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Stock:         p.Stock,
		InStock:       p.Stock > 0,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		ShopID:        p.ShopID,
		ShopName:      p.ShopName,
		PurchaseCount: p.PurchaseCount,
		CreatedAt:     p.CreatedAt,
	}
	if price, ok := p.Price.Decimal(); ok {
		dto.PriceFormatted = pricing.FormatVND(price)
	}
	return dto
}

// NewProductDTOs maps a list, never returning nil.
func NewProductDTOs(products []backend.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductDTO(p))
	}
	return out
}

// ViewKind names a mountable catalog view.
type ViewKind string

const (
	ViewListing ViewKind = "catalog"
	ViewDetail  ViewKind = "product"
)

// ListingQuery is what a listing view shows.
type ListingQuery struct {
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// ViewSnapshot is the current state of a mounted view.
type ViewSnapshot struct {
	Kind        ViewKind                `json:"kind"`
	Query       *ListingQuery           `json:"query,omitempty"`
	Listing     *types.Page[ProductDTO] `json:"listing,omitempty"`
	Detail      *ProductDetail          `json:"detail,omitempty"`
	RefreshedAt time.Time               `json:"refreshed_at"`
	Refreshes   int                     `json:"refreshes"`
}
