package vouchers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Backend is the voucher part of the storefront API plus the profile lookup for the shop id.
type Backend interface {
	Me(ctx context.Context, cred auth.Credential) (*backend.UserProfile, error)
	CreateVoucher(ctx context.Context, cred auth.Credential, v backend.Voucher) (*backend.Voucher, error)
	MyShopVouchers(ctx context.Context, cred auth.Credential) ([]backend.Voucher, error)
	ShopVouchers(ctx context.Context, cred auth.Credential, shopID string) ([]backend.Voucher, error)
	ProductVouchers(ctx context.Context, cred auth.Credential, productID string) ([]backend.Voucher, error)
	UpdateVoucher(ctx context.Context, cred auth.Credential, voucherID string, v backend.Voucher) (*backend.Voucher, error)
	DeleteVoucher(ctx context.Context, cred auth.Credential, voucherID string) error
	RemoveVoucherProduct(ctx context.Context, cred auth.Credential, voucherID, productID string) error
}

// Input is the voucher form. Dates may be bare YYYY-MM-DD values.
type Input struct {
	Code          string        `json:"code"`
	DiscountType  string        `json:"discount_type"`
	DiscountValue types.Numeric `json:"discount_value"`
	MinOrderValue types.Numeric `json:"min_order_value"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	ProductIDs    []string      `json:"product_ids"`
}

type Service interface {
	Create(ctx context.Context, cred auth.Credential, in Input) (*VoucherDTO, error)
	ListMine(ctx context.Context, cred auth.Credential) ([]VoucherDTO, error)
	ListForShop(ctx context.Context, cred auth.Credential, shopID string) ([]VoucherDTO, error)
	ListForProduct(ctx context.Context, cred auth.Credential, productID string) ([]VoucherDTO, error)
	Update(ctx context.Context, cred auth.Credential, voucherID string, in Input) (*VoucherDTO, error)
	Delete(ctx context.Context, cred auth.Credential, voucherID string) error
	ApplyProducts(ctx context.Context, cred auth.Credential, voucherID string, productIDs []string) (*VoucherDTO, error)
	RemoveProduct(ctx context.Context, cred auth.Credential, voucherID, productID string) error
}

type service struct {
	backend Backend
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(api Backend, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("vouchers backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: api, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, cred auth.Credential, in Input) (*VoucherDTO, error) {
	body, err := BuildVoucher(in)
	if err != nil {
		return nil, err
	}
	shopID, err := s.shopID(ctx, cred)
	if err != nil {
		return nil, err
	}
	body.ShopID = shopID
	body.Type = enums.VoucherTypeShop

	created, err := s.backend.CreateVoucher(ctx, cred, body)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"voucher_id": created.ID, "shop_id": shopID}), "seller.voucher.created")
	dto := NewVoucherDTO(*created, s.now().UTC())
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, cred auth.Credential) ([]VoucherDTO, error) {
	list, err := s.backend.MyShopVouchers(ctx, cred)
	if err != nil {
		return nil, err
	}
	return newVoucherDTOs(list, s.now().UTC()), nil
}

func (s *service) ListForShop(ctx context.Context, cred auth.Credential, shopID string) ([]VoucherDTO, error) {
	if strings.TrimSpace(shopID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	list, err := s.backend.ShopVouchers(ctx, cred, shopID)
	if err != nil {
		return nil, err
	}
	return newVoucherDTOs(list, s.now().UTC()), nil
}

func (s *service) ListForProduct(ctx context.Context, cred auth.Credential, productID string) ([]VoucherDTO, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	list, err := s.backend.ProductVouchers(ctx, cred, productID)
	if err != nil {
		return nil, err
	}
	return newVoucherDTOs(list, s.now().UTC()), nil
}

func (s *service) Update(ctx context.Context, cred auth.Credential, voucherID string, in Input) (*VoucherDTO, error) {
	if err := requireVoucherID(voucherID); err != nil {
		return nil, err
	}
	body, err := BuildVoucher(in)
	if err != nil {
		return nil, err
	}
	current, err := s.find(ctx, cred, voucherID)
	if err != nil {
		return nil, err
	}
	body.ID = voucherID
	body.Type = current.Type
	body.ShopID = current.ShopID
	if in.ProductIDs == nil {
		body.ProductIDs = current.ProductIDs
	}

	updated, err := s.backend.UpdateVoucher(ctx, cred, voucherID, body)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "voucher_id", voucherID), "seller.voucher.updated")
	dto := NewVoucherDTO(*updated, s.now().UTC())
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, cred auth.Credential, voucherID string) error {
	if err := requireVoucherID(voucherID); err != nil {
		return err
	}
	if err := s.backend.DeleteVoucher(ctx, cred, voucherID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "voucher_id", voucherID), "seller.voucher.deleted")
	return nil
}

// ApplyProducts replaces the voucher's product set. The backend only accepts full
// voucher bodies, so the current voucher is read back and resent.
func (s *service) ApplyProducts(ctx context.Context, cred auth.Credential, voucherID string, productIDs []string) (*VoucherDTO, error) {
	if err := requireVoucherID(voucherID); err != nil {
		return nil, err
	}
	current, err := s.find(ctx, cred, voucherID)
	if err != nil {
		return nil, err
	}
	body := *current
	body.ProductIDs = cleanIDs(productIDs)

	updated, err := s.backend.UpdateVoucher(ctx, cred, voucherID, body)
	if err != nil {
		return nil, err
	}
	lctx := s.logg.WithFields(ctx, map[string]any{"voucher_id": voucherID, "products": len(body.ProductIDs)})
	s.logg.Info(lctx, "seller.voucher.products_applied")
	dto := NewVoucherDTO(*updated, s.now().UTC())
	return &dto, nil
}

func (s *service) RemoveProduct(ctx context.Context, cred auth.Credential, voucherID, productID string) error {
	if err := requireVoucherID(voucherID); err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.backend.RemoveVoucherProduct(ctx, cred, voucherID, productID)
}

func (s *service) find(ctx context.Context, cred auth.Credential, voucherID string) (*backend.Voucher, error) {
	list, err := s.backend.MyShopVouchers(ctx, cred)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == voucherID {
			return &list[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found").
		WithDetails(map[string]any{"voucher_id": voucherID})
}

func (s *service) shopID(ctx context.Context, cred auth.Credential) (string, error) {
	profile, err := s.backend.Me(ctx, cred)
	if err != nil {
		return "", err
	}
	if profile.SellerProfile == nil || strings.TrimSpace(profile.SellerProfile.ShopID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "open a shop before creating vouchers")
	}
	return profile.SellerProfile.ShopID, nil
}

// BuildVoucher validates the form and converts it to the backend body.
func BuildVoucher(in Input) (backend.Voucher, error) {
	fields := map[string]string{}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		fields["code"] = "is required"
	}

	discountType, typeErr := enums.ParseDiscountType(in.DiscountType)
	switch {
	case strings.TrimSpace(in.DiscountType) == "":
		fields["discount_type"] = "is required"
	case typeErr != nil:
		fields["discount_type"] = "must be PERCENTAGE or FIXED"
	}

	value, ok := in.DiscountValue.Decimal()
	switch {
	case !in.DiscountValue.IsSet():
		fields["discount_value"] = "is required"
	case !ok:
		fields["discount_value"] = "must be a number"
	case !value.IsPositive():
		fields["discount_value"] = "must be greater than 0"
	case discountType == enums.DiscountTypePercentage && value.GreaterThan(hundred):
		fields["discount_value"] = "must be at most 100 for a percentage"
	}

	var minOrder *types.Numeric
	if in.MinOrderValue.IsSet() {
		d, ok := in.MinOrderValue.Decimal()
		switch {
		case !ok:
			fields["min_order_value"] = "must be a number"
		case d.IsNegative():
			fields["min_order_value"] = "must not be negative"
		default:
			m := in.MinOrderValue
			minOrder = &m
		}
	}

	start, startOK := parseVoucherDate(in.StartDate, "start_date", fields)
	end, endOK := parseVoucherDate(in.EndDate, "end_date", fields)
	if startOK && endOK && end.Before(start.Time) {
		fields["end_date"] = "must not be before start_date"
	}

	if len(fields) > 0 {
		return backend.Voucher{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid voucher").
			WithDetails(map[string]any{"fields": fields})
	}
	return backend.Voucher{
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: in.DiscountValue,
		MinOrderValue: minOrder,
		StartDate:     start,
		EndDate:       end,
		ProductIDs:    cleanIDs(in.ProductIDs),
	}, nil
}

// parseVoucherDate reads a date-time or a bare date, which becomes midnight.
func parseVoucherDate(value, field string, fields map[string]string) (types.LocalTime, bool) {
	if strings.TrimSpace(value) == "" {
		fields[field] = "is required"
		return types.LocalTime{}, false
	}
	t, err := types.ParseLocalTime(value)
	if err != nil {
		fields[field] = "must be a date (YYYY-MM-DD) or date-time"
		return types.LocalTime{}, false
	}
	return t, true
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func requireVoucherID(voucherID string) error {
	if strings.TrimSpace(voucherID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher id is required")
	}
	return nil
}
