package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

// ListProducts returns every product in the requested order.
func (c *Client) ListProducts(ctx context.Context, cred auth.Credential, sort enums.ProductSort) ([]Product, error) {
	query := url.Values{}
	if sort != "" {
		query.Set("sort", sort.String())
	}
	var products []Product
	if err := c.do(ctx, cred, request{
		endpoint: "products.list",
		method:   http.MethodGet,
		path:     "products/all",
		query:    query,
		out:      &products,
	}); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product. Authenticated reads also record a view on the backend.
func (c *Client) GetProduct(ctx context.Context, cred auth.Credential, productID string) (*Product, error) {
	var product Product
	if err := c.do(ctx, cred, request{
		endpoint: "products.get",
		method:   http.MethodGet,
		path:     pathf("products/%s", productID),
		out:      &product,
	}); err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchProducts filters by keyword and category.
func (c *Client) SearchProducts(ctx context.Context, cred auth.Credential, q ProductQuery) ([]Product, error) {
	query := url.Values{}
	if q.Keyword != "" {
		query.Set("keyword", q.Keyword)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort.String())
	}
	var products []Product
	if err := c.do(ctx, cred, request{
		endpoint: "products.search",
		method:   http.MethodGet,
		path:     "products/search",
		query:    query,
		out:      &products,
	}); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context, cred auth.Credential) ([]string, error) {
	var categories []string
	if err := c.do(ctx, cred, request{
		endpoint: "products.categories",
		method:   http.MethodGet,
		path:     "products/categories",
		out:      &categories,
	}); err != nil {
		return nil, err
	}
	return categories, nil
}

// Recommendations returns personalised products for the signed-in user.
func (c *Client) Recommendations(ctx context.Context, cred auth.Credential) ([]Product, error) {
	return c.recommendations(ctx, cred, "recommendations.list", "recommendations")
}

// SimilarProducts returns products related to productID.
func (c *Client) SimilarProducts(ctx context.Context, cred auth.Credential, productID string) ([]Product, error) {
	return c.recommendations(ctx, cred, "recommendations.similar", pathf("recommendations/similar/%s", productID))
}

func (c *Client) recommendations(ctx context.Context, cred auth.Credential, endpoint, path string) ([]Product, error) {
	var resp wrapped[[]Product]
	if err := c.do(ctx, cred, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
		out:      &resp,
	}); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = pkgerrors.MetadataFor(pkgerrors.CodeUpstream).PublicMessage
		}
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, msg)
	}
	return resp.Data, nil
}
