package backend

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

// GetCart returns the cart lines as products carrying their quantity.
func (c *Client) GetCart(ctx context.Context, cred auth.Credential) ([]Product, error) {
	var lines []Product
	if err := c.do(ctx, cred, request{
		endpoint: "cart.get",
		method:   http.MethodGet,
		path:     "customers/cart",
		out:      &lines,
	}); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddToCart adds quantity units of a product, optionally remembering a voucher.
func (c *Client) AddToCart(ctx context.Context, cred auth.Credential, productID string, quantity int, voucherID string) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "cart.add",
		method:   http.MethodPost,
		path:     "customers/cart/add",
		body:     cartAddRequest{ProductID: productID, Quantity: quantity, VoucherID: voucherID},
		out:      &msg,
	})
	return msg, err
}

// RemoveFromCart drops a product from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, cred auth.Credential, productID string) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "cart.remove",
		method:   http.MethodDelete,
		path:     "customers/cart/remove",
		body:     cartRemoveRequest{ProductID: productID},
		out:      &msg,
	})
	return msg, err
}

// UpdateCartQuantity sets the quantity of a cart line.
func (c *Client) UpdateCartQuantity(ctx context.Context, cred auth.Credential, productID string, quantity int) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "cart.update_quantity",
		method:   http.MethodPut,
		path:     pathf("customers/cart/update-quantity/%s/%s", productID, strconv.Itoa(quantity)),
		out:      &msg,
	})
	return msg, err
}

// CreateOrder places an order and returns the new order id.
func (c *Client) CreateOrder(ctx context.Context, cred auth.Credential, req CreateOrderRequest) (string, error) {
	var orderID string
	if err := c.do(ctx, cred, request{
		endpoint: "orders.create",
		method:   http.MethodPost,
		path:     "customers/orders",
		body:     req,
		out:      &orderID,
	}); err != nil {
		return "", err
	}
	orderID = strings.Trim(orderID, `"`)
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "the storefront service did not return an order id")
	}
	return orderID, nil
}
