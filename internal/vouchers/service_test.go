package vouchers

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

type stubBackend struct {
	profile *backend.UserProfile
	mine    []backend.Voucher
	created *backend.Voucher
	updates []backend.Voucher
	removed [][2]string
	creates int
}

func (s *stubBackend) Me(context.Context, auth.Credential) (*backend.UserProfile, error) {
	return s.profile, nil
}

func (s *stubBackend) CreateVoucher(_ context.Context, _ auth.Credential, v backend.Voucher) (*backend.Voucher, error) {
	s.creates++
	v.ID = "v-new"
	s.created = &v
	return &v, nil
}

func (s *stubBackend) MyShopVouchers(context.Context, auth.Credential) ([]backend.Voucher, error) {
	return s.mine, nil
}

func (s *stubBackend) ShopVouchers(context.Context, auth.Credential, string) ([]backend.Voucher, error) {
	return s.mine, nil
}

func (s *stubBackend) ProductVouchers(context.Context, auth.Credential, string) ([]backend.Voucher, error) {
	return nil, nil
}

func (s *stubBackend) UpdateVoucher(_ context.Context, _ auth.Credential, _ string, v backend.Voucher) (*backend.Voucher, error) {
	s.updates = append(s.updates, v)
	return &v, nil
}

func (s *stubBackend) DeleteVoucher(context.Context, auth.Credential, string) error {
	return nil
}

func (s *stubBackend) RemoveVoucherProduct(_ context.Context, _ auth.Credential, voucherID, productID string) error {
	s.removed = append(s.removed, [2]string{voucherID, productID})
	return nil
}

var cred = auth.Credential{SessionID: "sess", UserID: "seller-1", Token: "tok"}

func sellerProfile() *backend.UserProfile {
	return &backend.UserProfile{ID: "seller-1", SellerProfile: &backend.SellerProfile{ShopID: "shop-9"}}
}

func newTestService(t *testing.T, api *stubBackend) *service {
	t.Helper()
	svc, err := NewService(api, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	s := svc.(*service)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func validInput() Input {
	return Input{
		Code:          "SPRING10",
		DiscountType:  "percentage",
		DiscountValue: types.NumericFromInt(10),
		StartDate:     "2024-02-01",
		EndDate:       "2024-04-01",
		ProductIDs:    []string{"a", " a ", "b", ""},
	}
}

func TestCreateAddsShopAndMidnightDates(t *testing.T) {
	api := &stubBackend{profile: sellerProfile()}
	svc := newTestService(t, api)

	got, err := svc.Create(context.Background(), cred, validInput())
	require.NoError(t, err)
	require.NotNil(t, api.created)
	assert.Equal(t, "shop-9", api.created.ShopID)
	assert.Equal(t, enums.VoucherTypeShop, api.created.Type)
	assert.Equal(t, enums.DiscountTypePercentage, api.created.DiscountType)
	assert.Equal(t, []string{"a", "b"}, api.created.ProductIDs)
	assert.Nil(t, api.created.MinOrderValue)

	raw, err := json.Marshal(api.created)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"startDate":"2024-02-01T00:00:00"`)
	assert.Contains(t, string(raw), `"endDate":"2024-04-01T00:00:00"`)

	assert.True(t, got.Active)
}

func TestCreateRequiresShop(t *testing.T) {
	api := &stubBackend{profile: &backend.UserProfile{ID: "buyer"}}
	svc := newTestService(t, api)

	_, err := svc.Create(context.Background(), cred, validInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Zero(t, api.creates)
}

func TestBuildVoucherValidation(t *testing.T) {
	mutate := func(f func(*Input)) Input {
		in := validInput()
		f(&in)
		return in
	}
	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"code", mutate(func(in *Input) { in.Code = " " }), "code"},
		{"type missing", mutate(func(in *Input) { in.DiscountType = "" }), "discount_type"},
		{"type unknown", mutate(func(in *Input) { in.DiscountType = "BOGO" }), "discount_type"},
		{"percentage zero", mutate(func(in *Input) { in.DiscountValue = types.NumericFromInt(0) }), "discount_value"},
		{"percentage over 100", mutate(func(in *Input) { in.DiscountValue = types.NumericFromInt(101) }), "discount_value"},
		{"fixed negative", mutate(func(in *Input) {
			in.DiscountType = "FIXED"
			in.DiscountValue = types.NumericFromInt(-1)
		}), "discount_value"},
		{"min order negative", mutate(func(in *Input) { in.MinOrderValue = types.NumericFromInt(-1) }), "min_order_value"},
		{"start missing", mutate(func(in *Input) { in.StartDate = "" }), "start_date"},
		{"end garbled", mutate(func(in *Input) { in.EndDate = "soon" }), "end_date"},
		{"end before start", mutate(func(in *Input) { in.EndDate = "2024-01-01" }), "end_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildVoucher(tc.in)
			typed := pkgerrors.As(err)
			if typed == nil {
				t.Fatalf("expected validation error, got %v", err)
			}
			fields := typed.Details().(map[string]any)["fields"].(map[string]string)
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestBuildVoucherBoundaries(t *testing.T) {
	in := validInput()
	in.DiscountValue = types.NumericFromInt(100)
	in.EndDate = in.StartDate
	_, err := BuildVoucher(in)
	require.NoError(t, err)

	fixed := validInput()
	fixed.DiscountType = "FIXED"
	fixed.DiscountValue = types.NumericFromInt(500000)
	fixed.MinOrderValue = types.NumericFromInt(0)
	v, err := BuildVoucher(fixed)
	require.NoError(t, err)
	require.NotNil(t, v.MinOrderValue)
}

func TestApplyProductsResendsFullVoucher(t *testing.T) {
	existing := backend.Voucher{
		ID:            "v1",
		Code:          "OLD",
		Type:          enums.VoucherTypeShop,
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: types.NumericFromInt(20000),
		ShopID:        "shop-9",
		ProductIDs:    []string{"x"},
	}
	api := &stubBackend{mine: []backend.Voucher{existing}}
	svc := newTestService(t, api)

	got, err := svc.ApplyProducts(context.Background(), cred, "v1", []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, api.updates, 1)
	sent := api.updates[0]
	assert.Equal(t, "OLD", sent.Code)
	assert.Equal(t, "shop-9", sent.ShopID)
	assert.Equal(t, []string{"p1", "p2"}, sent.ProductIDs)
	assert.Equal(t, []string{"p1", "p2"}, got.ProductIDs)

	_, err = svc.ApplyProducts(context.Background(), cred, "missing", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateKeepsProductsWhenOmitted(t *testing.T) {
	api := &stubBackend{mine: []backend.Voucher{{ID: "v1", ShopID: "shop-9", ProductIDs: []string{"x"}}}}
	svc := newTestService(t, api)

	in := validInput()
	in.ProductIDs = nil
	_, err := svc.Update(context.Background(), cred, "v1", in)
	require.NoError(t, err)
	require.Len(t, api.updates, 1)
	assert.Equal(t, []string{"x"}, api.updates[0].ProductIDs)
	assert.Equal(t, "v1", api.updates[0].ID)
}

func TestRemoveProductAndLists(t *testing.T) {
	api := &stubBackend{mine: []backend.Voucher{{ID: "v1", EndDate: types.NewLocalTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}}}
	svc := newTestService(t, api)

	require.NoError(t, svc.RemoveProduct(context.Background(), cred, "v1", "p1"))
	assert.Equal(t, [][2]string{{"v1", "p1"}}, api.removed)

	mine, err := svc.ListMine(context.Background(), cred)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.False(t, mine[0].Active)
	assert.NotNil(t, mine[0].ProductIDs)

	forProduct, err := svc.ListForProduct(context.Background(), cred, "p1")
	require.NoError(t, err)
	assert.NotNil(t, forProduct)

	_, err = svc.ListForShop(context.Background(), cred, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
