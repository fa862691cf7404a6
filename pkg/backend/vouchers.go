package backend

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
)

// CreateVoucher creates a shop voucher; the backend stamps the shop id and type.
func (c *Client) CreateVoucher(ctx context.Context, cred auth.Credential, v Voucher) (*Voucher, error) {
	var created Voucher
	if err := c.do(ctx, cred, request{
		endpoint: "vouchers.create",
		method:   http.MethodPost,
		path:     "vouchers",
		body:     v,
		out:      &created,
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

// ShopVouchers lists a shop's vouchers.
func (c *Client) ShopVouchers(ctx context.Context, cred auth.Credential, shopID string) ([]Voucher, error) {
	return c.listVouchers(ctx, cred, "vouchers.shop", pathf("vouchers/shop/%s", shopID))
}

// MyShopVouchers lists the signed-in seller's vouchers.
func (c *Client) MyShopVouchers(ctx context.Context, cred auth.Credential) ([]Voucher, error) {
	return c.listVouchers(ctx, cred, "vouchers.mine", "vouchers/shop")
}

// ProductVouchers lists the vouchers applicable to a product.
func (c *Client) ProductVouchers(ctx context.Context, cred auth.Credential, productID string) ([]Voucher, error) {
	return c.listVouchers(ctx, cred, "vouchers.product", pathf("vouchers/product/%s", productID))
}

// UpdateVoucher replaces a voucher.
func (c *Client) UpdateVoucher(ctx context.Context, cred auth.Credential, voucherID string, v Voucher) (*Voucher, error) {
	var updated Voucher
	if err := c.do(ctx, cred, request{
		endpoint: "vouchers.update",
		method:   http.MethodPut,
		path:     pathf("vouchers/%s", voucherID),
		body:     v,
		out:      &updated,
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteVoucher removes a voucher.
func (c *Client) DeleteVoucher(ctx context.Context, cred auth.Credential, voucherID string) error {
	return c.do(ctx, cred, request{
		endpoint: "vouchers.delete",
		method:   http.MethodDelete,
		path:     pathf("vouchers/%s", voucherID),
	})
}

// RemoveVoucherProduct detaches one product from a voucher.
func (c *Client) RemoveVoucherProduct(ctx context.Context, cred auth.Credential, voucherID, productID string) error {
	return c.do(ctx, cred, request{
		endpoint: "vouchers.remove_product",
		method:   http.MethodPatch,
		path:     "vouchers/remove-product",
		body:     voucherProductRequest{VoucherID: voucherID, ProductID: productID},
	})
}

func (c *Client) listVouchers(ctx context.Context, cred auth.Credential, endpoint, path string) ([]Voucher, error) {
	var vouchers []Voucher
	if err := c.do(ctx, cred, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
		out:      &vouchers,
	}); err != nil {
		return nil, err
	}
	return vouchers, nil
}
