package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
)

// CreateSellerProduct adds a product to the seller's shop.
func (c *Client) CreateSellerProduct(ctx context.Context, cred auth.Credential, in ProductInput) (*Product, error) {
	var product Product
	if err := c.do(ctx, cred, request{
		endpoint: "seller_products.create",
		method:   http.MethodPost,
		path:     "seller/products/create",
		body:     in,
		out:      &product,
	}); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListSellerProducts lists the seller's own products.
func (c *Client) ListSellerProducts(ctx context.Context, cred auth.Credential) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, cred, request{
		endpoint: "seller_products.list",
		method:   http.MethodGet,
		path:     "seller/products/mine",
		out:      &products,
	}); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateSellerProduct replaces one of the seller's products.
func (c *Client) UpdateSellerProduct(ctx context.Context, cred auth.Credential, productID string, in ProductInput) (*Product, error) {
	var product Product
	if err := c.do(ctx, cred, request{
		endpoint: "seller_products.update",
		method:   http.MethodPut,
		path:     pathf("seller/products/%s", productID),
		body:     in,
		out:      &product,
	}); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteSellerProduct removes one of the seller's products.
func (c *Client) DeleteSellerProduct(ctx context.Context, cred auth.Credential, productID string) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "seller_products.delete",
		method:   http.MethodDelete,
		path:     pathf("seller/products/%s", productID),
		out:      &msg,
	})
	return msg, err
}

// RevenueOverview returns the seller revenue summary.
func (c *Client) RevenueOverview(ctx context.Context, cred auth.Credential) (*OrderStatistics, error) {
	var stats OrderStatistics
	if err := c.do(ctx, cred, request{
		endpoint: "revenue.overview",
		method:   http.MethodGet,
		path:     "seller/revenue/overview",
		out:      &stats,
	}); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RevenueChart returns the bucketed revenue series for period.
func (c *Client) RevenueChart(ctx context.Context, cred auth.Credential, period enums.RevenuePeriod) (*RevenueChart, error) {
	query := url.Values{}
	query.Set("period", period.String())
	var chart RevenueChart
	if err := c.do(ctx, cred, request{
		endpoint: "revenue.chart",
		method:   http.MethodGet,
		path:     "seller/revenue/chart",
		query:    query,
		out:      &chart,
	}); err != nil {
		return nil, err
	}
	return &chart, nil
}
