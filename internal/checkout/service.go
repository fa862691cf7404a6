package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-gateway/internal/cart"
	"github.com/angelmondragon/storefront-gateway/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/events"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/pricing"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// Backend is the part of the storefront API checkout talks to.
type Backend interface {
	Me(ctx context.Context, cred auth.Credential) (*backend.UserProfile, error)
	GetProduct(ctx context.Context, cred auth.Credential, productID string) (*backend.Product, error)
	ProductVouchers(ctx context.Context, cred auth.Credential, productID string) ([]backend.Voucher, error)
	CreateOrder(ctx context.Context, cred auth.Credential, req backend.CreateOrderRequest) (string, error)
}

// CartView supplies the selected lines and is refreshed after a cart order.
type CartView interface {
	SelectedLines(ctx context.Context, cred auth.Credential) ([]cart.SelectedLine, error)
	Offers(ctx context.Context, cred auth.Credential, productID string) ([]backend.Voucher, error)
	Fetch(ctx context.Context, cred auth.Credential) (*cart.Snapshot, error)
}

// Publisher announces placed orders to other views.
type Publisher interface {
	PublishOrderCompleted(ctx context.Context, evt events.OrderCompleted)
}

// Service exposes the checkout flow.
type Service interface {
	StartFromCart(ctx context.Context, cred auth.Credential) (*Draft, error)
	StartBuyNow(ctx context.Context, cred auth.Credential, productID string, quantity int) (*Draft, error)
	Draft(ctx context.Context, sessionID string) (*Draft, error)
	Update(ctx context.Context, sessionID string, patch Patch) (*Draft, error)
	SelectVoucher(ctx context.Context, cred auth.Credential, productID, voucherID string) (*Draft, error)
	Submit(ctx context.Context, cred auth.Credential) (*Result, error)
	Discard(sessionID string)
	Forget(sessionID string) error
}

type item struct {
	product   backend.Product
	quantity  int
	voucherID string
	offers    []backend.Voucher
}

type state struct {
	recipientName   string
	phoneNumber     string
	shippingAddress string
	paymentMethod   enums.PaymentMethod
	bankAccount     *types.BankAccount
	savedAddresses  []types.ShippingAddress
	items           []item
	isBuyNow        bool
	updatedAt       time.Time
}

type service struct {
	backend   Backend
	cart      CartView
	publisher Publisher
	logg      *logger.Logger
	now       func() time.Time
	inflight  *inflight

	mu     sync.Mutex
	drafts map[string]*state
}

// NewService builds the checkout service.
func NewService(api Backend, cartView CartView, publisher Publisher, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("checkout backend required")
	}
	if cartView == nil {
		return nil, fmt.Errorf("cart view required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		backend:   api,
		cart:      cartView,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
		inflight:  newInflight(),
		drafts:    map[string]*state{},
	}, nil
}

func (s *service) StartFromCart(ctx context.Context, cred auth.Credential) (*Draft, error) {
	selected, err := s.cart.SelectedLines(ctx, cred)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select at least one product to check out")
	}

	items := make([]item, 0, len(selected))
	for _, line := range selected {
		offers, err := s.cart.Offers(ctx, cred, line.Product.ID)
		if err != nil {
			return nil, err
		}
		it := item{product: line.Product, quantity: line.Quantity, offers: offers}
		if line.Voucher != nil {
			it.voucherID = line.Voucher.ID
		}
		items = append(items, it)
	}

	st := &state{items: items, paymentMethod: enums.PaymentMethodCash}
	s.prefill(ctx, cred, st)
	return s.store(ctx, cred.SessionID, st), nil
}

func (s *service) StartBuyNow(ctx context.Context, cred auth.Credential, productID string, quantity int) (*Draft, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.backend.GetProduct(ctx, cred, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock").
			WithDetails(map[string]any{"product_id": productID})
	}
	quantity = min(max(quantity, 1), product.Stock)

	offers, err := s.backend.ProductVouchers(ctx, cred, productID)
	if err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"product_id": productID, "error": err.Error()})
		s.logg.Warn(lctx, "checkout.vouchers.lookup_failed")
		offers = nil
	}

	st := &state{
		items:         []item{{product: *product, quantity: quantity, offers: offers}},
		paymentMethod: enums.PaymentMethodCash,
		isBuyNow:      true,
	}
	s.prefill(ctx, cred, st)
	return s.store(ctx, cred.SessionID, st), nil
}

// prefill copies recipient and payment details from the profile. A failed lookup leaves them blank.
func (s *service) prefill(ctx context.Context, cred auth.Credential, st *state) {
	profile, err := s.backend.Me(ctx, cred)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.prefill.failed")
		return
	}
	st.recipientName = profile.FullName
	if buyer := profile.BuyerProfile; buyer != nil {
		st.phoneNumber = buyer.PhoneNumber
		st.bankAccount = buyer.BankAccount
		st.shippingAddress = buyer.PrimaryAddress.Format()
		st.savedAddresses = append([]types.ShippingAddress(nil), buyer.Addresses...)
	}
}

func (s *service) store(ctx context.Context, sessionID string, st *state) *Draft {
	st.updatedAt = s.now().UTC()
	s.mu.Lock()
	s.drafts[sessionID] = st
	draft := s.renderLocked(ctx, sessionID, st)
	s.mu.Unlock()
	return draft
}

func (s *service) Draft(ctx context.Context, sessionID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.drafts[sessionID]
	if !ok {
		return nil, errNoDraft()
	}
	return s.renderLocked(ctx, sessionID, st), nil
}

func (s *service) Update(ctx context.Context, sessionID string, patch Patch) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.drafts[sessionID]
	if !ok {
		return nil, errNoDraft()
	}

	if patch.PaymentMethod != nil && !patch.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is not supported").
			WithDetails(map[string]any{"payment_method": patch.PaymentMethod.String()})
	}
	var saved *types.ShippingAddress
	if patch.AddressID != nil {
		for i := range st.savedAddresses {
			if st.savedAddresses[i].AddressID == *patch.AddressID {
				saved = &st.savedAddresses[i]
				break
			}
		}
		if saved == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "saved address not found").
				WithDetails(map[string]any{"address_id": *patch.AddressID})
		}
	}

	if patch.RecipientName != nil {
		st.recipientName = strings.TrimSpace(*patch.RecipientName)
	}
	if patch.PhoneNumber != nil {
		st.phoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.ShippingAddress != nil {
		st.shippingAddress = strings.TrimSpace(*patch.ShippingAddress)
	}
	if saved != nil {
		st.shippingAddress = saved.Address().Format()
	}
	if patch.PaymentMethod != nil {
		st.paymentMethod = *patch.PaymentMethod
	}
	st.updatedAt = s.now().UTC()
	return s.renderLocked(ctx, sessionID, st), nil
}

func (s *service) SelectVoucher(ctx context.Context, cred auth.Credential, productID, voucherID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.drafts[cred.SessionID]
	if !ok {
		return nil, errNoDraft()
	}

	idx := -1
	for i := range st.items {
		if st.items[i].product.ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not part of this order").
			WithDetails(map[string]any{"product_id": productID})
	}
	it := &st.items[idx]
	if voucherID != "" {
		if err := cart.CheckVoucher(pricingLine(*it), it.offers, voucherID); err != nil {
			return nil, err
		}
	}
	it.voucherID = voucherID
	st.updatedAt = s.now().UTC()
	return s.renderLocked(ctx, cred.SessionID, st), nil
}

func (s *service) Submit(ctx context.Context, cred auth.Credential) (*Result, error) {
	release, ok := s.inflight.acquire(cred.SessionID)
	if !ok {
		s.logg.Warn(ctx, "checkout.submit.duplicate")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order submission already in progress")
	}
	defer release()

	s.mu.Lock()
	st, exists := s.drafts[cred.SessionID]
	if !exists {
		s.mu.Unlock()
		return nil, errNoDraft()
	}
	draft := s.renderLocked(ctx, cred.SessionID, st)
	req := buildOrderRequest(st)
	s.mu.Unlock()

	if err := helpers.ValidateOrder(helpers.OrderInput{
		RecipientName:   draft.RecipientName,
		PhoneNumber:     draft.PhoneNumber,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
		BankAccount:     draft.BankAccount,
		LineCount:       len(draft.Lines),
	}); err != nil {
		return nil, err
	}
	if len(draft.Issues) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order contains lines that cannot be priced").
			WithDetails(map[string]any{"issues": draft.Issues})
	}

	orderID, err := s.backend.CreateOrder(ctx, cred, req)
	if err != nil {
		s.logg.Error(ctx, "checkout.submit.failed", err)
		return nil, err
	}
	octx := s.logg.WithField(ctx, "order_id", orderID)
	s.logg.Info(octx, "checkout.submit.succeeded")

	productIDs := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	s.publisher.PublishOrderCompleted(octx, events.OrderCompleted{
		OrderID:    orderID,
		SessionID:  cred.SessionID,
		ProductIDs: productIDs,
	})

	if !req.IsBuyNow {
		if _, err := s.cart.Fetch(octx, cred); err != nil {
			s.logg.Warn(s.logg.WithField(octx, "error", err.Error()), "checkout.cart_refresh.failed")
		}
	}

	s.mu.Lock()
	if s.drafts[cred.SessionID] == st {
		delete(s.drafts, cred.SessionID)
	}
	s.mu.Unlock()

	return &Result{
		OrderID:        orderID,
		Total:          draft.Total,
		TotalFormatted: draft.TotalFormatted,
		IsBuyNow:       req.IsBuyNow,
	}, nil
}

func (s *service) Discard(sessionID string) {
	s.mu.Lock()
	delete(s.drafts, sessionID)
	s.mu.Unlock()
}

func (s *service) Forget(sessionID string) error {
	s.Discard(sessionID)
	s.inflight.forget(sessionID)
	return nil
}

func (s *service) renderLocked(ctx context.Context, sessionID string, st *state) *Draft {
	lines := make([]pricing.Line, 0, len(st.items))
	vouchers := map[string]*pricing.Voucher{}
	for _, it := range st.items {
		lines = append(lines, pricingLine(it))
		if v := chosenVoucher(it); v != nil {
			vouchers[it.product.ID] = cart.PricingVoucher(v)
		}
	}
	summary, err := pricing.Summarize(lines, vouchers, func(string) bool { return true })

	draft := &Draft{
		RecipientName:   st.recipientName,
		PhoneNumber:     st.phoneNumber,
		ShippingAddress: st.shippingAddress,
		PaymentMethod:   st.paymentMethod,
		BankAccount:     st.bankAccount,
		SavedAddresses:  append([]types.ShippingAddress(nil), st.savedAddresses...),
		Lines:           make([]Line, 0, len(st.items)),
		IsBuyNow:        st.isBuyNow,
		Total:           summary.Total,
		TotalFormatted:  pricing.FormatVND(summary.Total),
		Submitting:      s.inflight.held(sessionID),
		UpdatedAt:       st.updatedAt,
	}
	for _, issue := range multierr.Errors(err) {
		draft.Issues = append(draft.Issues, issue.Error())
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "issues", len(draft.Issues)), "checkout.pricing.issues")
	}

	for _, it := range st.items {
		quote, _ := summary.Quote(it.product.ID)
		options := make([]cart.VoucherOption, 0, len(it.offers))
		for i := range it.offers {
			offer := &it.offers[i]
			options = append(options, cart.VoucherOption{
				ID:            offer.ID,
				Code:          offer.Code,
				DiscountType:  offer.DiscountType,
				DiscountValue: offer.DiscountValue,
				MinOrderValue: offer.MinOrderValue,
				Eligible:      !quote.Invalid && pricing.Eligible(quote.Subtotal, cart.PricingVoucher(offer)),
				Selected:      offer.ID == it.voucherID,
			})
		}
		draft.Lines = append(draft.Lines, Line{
			ProductID:      it.product.ID,
			Name:           it.product.Name,
			ImageURL:       it.product.ImageURL,
			ShopName:       it.product.ShopName,
			Price:          it.product.Price,
			Quantity:       it.quantity,
			Stock:          it.product.Stock,
			VoucherID:      it.voucherID,
			Subtotal:       quote.Subtotal,
			Discount:       quote.Discount,
			Total:          quote.Total,
			TotalFormatted: pricing.FormatVND(quote.Total),
			Vouchers:       options,
		})
	}
	return draft
}

func buildOrderRequest(st *state) backend.CreateOrderRequest {
	req := backend.CreateOrderRequest{
		FullName:        st.recipientName,
		PhoneNumber:     st.phoneNumber,
		ShippingAddress: st.shippingAddress,
		PaymentMethod:   st.paymentMethod.WireLabel(),
		Items:           make([]backend.OrderItemRequest, 0, len(st.items)),
		IsBuyNow:        st.isBuyNow,
	}
	if st.paymentMethod.RequiresBankAccount() {
		req.BankAccount = st.bankAccount
	}
	for _, it := range st.items {
		req.Items = append(req.Items, backend.OrderItemRequest{
			ProductID: it.product.ID,
			Quantity:  it.quantity,
			VoucherID: it.voucherID,
		})
	}
	return req
}

func pricingLine(it item) pricing.Line {
	return pricing.Line{
		ProductID: it.product.ID,
		Price:     it.product.Price,
		Quantity:  types.NumericFromInt(int64(it.quantity)),
		Stock:     it.product.Stock,
	}
}

func chosenVoucher(it item) *backend.Voucher {
	if it.voucherID == "" {
		return nil
	}
	for i := range it.offers {
		if it.offers[i].ID == it.voucherID {
			return &it.offers[i]
		}
	}
	return nil
}

func errNoDraft() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
}
