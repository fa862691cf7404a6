package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
)

// ListCustomerOrders lists the buyer's orders. status is ALL or one order status.
func (c *Client) ListCustomerOrders(ctx context.Context, cred auth.Credential, status string) ([]Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var orders []Order
	if err := c.do(ctx, cred, request{
		endpoint: "customer_orders.list",
		method:   http.MethodGet,
		path:     "customer/orders",
		query:    query,
		out:      &orders,
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetCustomerOrder fetches one of the buyer's orders.
func (c *Client) GetCustomerOrder(ctx context.Context, cred auth.Credential, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, cred, request{
		endpoint: "customer_orders.get",
		method:   http.MethodGet,
		path:     pathf("customer/orders/%s", orderID),
		out:      &order,
	}); err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmDelivery marks a shipping order as received.
func (c *Client) ConfirmDelivery(ctx context.Context, cred auth.Credential, orderID string) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "customer_orders.confirm_delivery",
		method:   http.MethodPost,
		path:     pathf("customer/orders/%s/confirm-delivery", orderID),
		out:      &msg,
	})
	return msg, err
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, cred auth.Credential, orderID string) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "customer_orders.cancel",
		method:   http.MethodPost,
		path:     pathf("customer/orders/%s/cancel", orderID),
		out:      &msg,
	})
	return msg, err
}

// ListSellerOrders lists orders containing the seller's products.
func (c *Client) ListSellerOrders(ctx context.Context, cred auth.Credential, filter SellerOrderFilter) ([]Order, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.StartDate != "" {
		query.Set("startDate", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("endDate", filter.EndDate)
	}
	var orders []Order
	if err := c.do(ctx, cred, request{
		endpoint: "seller_orders.list",
		method:   http.MethodGet,
		path:     "seller/orders",
		query:    query,
		out:      &orders,
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetSellerOrder fetches one order visible to the seller.
func (c *Client) GetSellerOrder(ctx context.Context, cred auth.Credential, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, cred, request{
		endpoint: "seller_orders.get",
		method:   http.MethodGet,
		path:     pathf("seller/orders/%s", orderID),
		out:      &order,
	}); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateSellerOrderStatus asks the backend to move an order to status.
func (c *Client) UpdateSellerOrderStatus(ctx context.Context, cred auth.Credential, orderID, status string) (*Order, error) {
	var order Order
	if err := c.do(ctx, cred, request{
		endpoint: "seller_orders.update_status",
		method:   http.MethodPut,
		path:     pathf("seller/orders/%s/status", orderID),
		body:     statusRequest{Status: status},
		out:      &order,
	}); err != nil {
		return nil, err
	}
	return &order, nil
}

// SellerOrderStatistics returns the seller's order summary.
func (c *Client) SellerOrderStatistics(ctx context.Context, cred auth.Credential) (*OrderStatistics, error) {
	var stats OrderStatistics
	if err := c.do(ctx, cred, request{
		endpoint: "seller_orders.statistics",
		method:   http.MethodGet,
		path:     "seller/orders/statistics",
		out:      &stats,
	}); err != nil {
		return nil, err
	}
	return &stats, nil
}
