package sellerproducts

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-gateway/internal/catalog"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// Backend is the seller side of the product API.
type Backend interface {
	ListSellerProducts(ctx context.Context, cred auth.Credential) ([]backend.Product, error)
	CreateSellerProduct(ctx context.Context, cred auth.Credential, in backend.ProductInput) (*backend.Product, error)
	UpdateSellerProduct(ctx context.Context, cred auth.Credential, productID string, in backend.ProductInput) (*backend.Product, error)
	DeleteSellerProduct(ctx context.Context, cred auth.Credential, productID string) (string, error)
}

// Input is the product form. Price and stock arrive as numbers or numeric strings.
type Input struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       types.Numeric `json:"price"`
	Stock       types.Numeric `json:"stock"`
	ImageURL    string        `json:"image_url"`
	Category    string        `json:"category"`
}

type Service interface {
	List(ctx context.Context, cred auth.Credential) ([]catalog.ProductDTO, error)
	Create(ctx context.Context, cred auth.Credential, in Input) (*catalog.ProductDTO, error)
	Update(ctx context.Context, cred auth.Credential, productID string, in Input) (*catalog.ProductDTO, error)
	Delete(ctx context.Context, cred auth.Credential, productID string) (string, error)
}

type service struct {
	backend Backend
	logg    *logger.Logger
}

func NewService(api Backend, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("seller products backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: api, logg: logg}, nil
}

func (s *service) List(ctx context.Context, cred auth.Credential) ([]catalog.ProductDTO, error) {
	products, err := s.backend.ListSellerProducts(ctx, cred)
	if err != nil {
		return nil, err
	}
	return catalog.NewProductDTOs(products), nil
}

func (s *service) Create(ctx context.Context, cred auth.Credential, in Input) (*catalog.ProductDTO, error) {
	body, err := BuildInput(in)
	if err != nil {
		return nil, err
	}
	product, err := s.backend.CreateSellerProduct(ctx, cred, body)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID), "seller.product.created")
	dto := catalog.NewProductDTO(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, cred auth.Credential, productID string, in Input) (*catalog.ProductDTO, error) {
	if err := requireProductID(productID); err != nil {
		return nil, err
	}
	body, err := BuildInput(in)
	if err != nil {
		return nil, err
	}
	product, err := s.backend.UpdateSellerProduct(ctx, cred, productID, body)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID), "seller.product.updated")
	dto := catalog.NewProductDTO(*product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, cred auth.Credential, productID string) (string, error) {
	if err := requireProductID(productID); err != nil {
		return "", err
	}
	msg, err := s.backend.DeleteSellerProduct(ctx, cred, productID)
	if err != nil {
		return "", err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID), "seller.product.deleted")
	return msg, nil
}

// BuildInput validates the form and converts it to the backend body.
func BuildInput(in Input) (backend.ProductInput, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "is required"
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		fields["category"] = "is required"
	}

	price, ok := in.Price.Decimal()
	switch {
	case !in.Price.IsSet():
		fields["price"] = "is required"
	case !ok:
		fields["price"] = "must be a number"
	case price.IsNegative():
		fields["price"] = "must not be negative"
	}

	stock, ok := in.Stock.IntValue()
	switch {
	case !in.Stock.IsSet():
		fields["stock"] = "is required"
	case !in.Stock.Valid():
		fields["stock"] = "must be a number"
	case !ok:
		fields["stock"] = "must be a whole number within range"
	case stock < 0:
		fields["stock"] = "must not be negative"
	}

	if len(fields) > 0 {
		return backend.ProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product").
			WithDetails(map[string]any{"fields": fields})
	}
	return backend.ProductInput{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Category:    category,
	}, nil
}

func requireProductID(productID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return nil
}
