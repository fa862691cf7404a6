package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-gateway/internal/selection"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/pricing"
)

const voucherLookupLimit = 8

// Backend is the part of the storefront API the cart view talks to.
type Backend interface {
	GetCart(ctx context.Context, cred auth.Credential) ([]backend.Product, error)
	AddToCart(ctx context.Context, cred auth.Credential, productID string, quantity int, voucherID string) (string, error)
	RemoveFromCart(ctx context.Context, cred auth.Credential, productID string) (string, error)
	UpdateCartQuantity(ctx context.Context, cred auth.Credential, productID string, quantity int) (string, error)
	ProductVouchers(ctx context.Context, cred auth.Credential, productID string) ([]backend.Voucher, error)
}

// Service exposes the session-scoped cart view.
type Service interface {
	Fetch(ctx context.Context, cred auth.Credential) (*Snapshot, error)
	Add(ctx context.Context, cred auth.Credential, productID string, quantity int, voucherID string) (*Snapshot, error)
	UpdateQuantity(ctx context.Context, cred auth.Credential, productID string, quantity int) (*Snapshot, error)
	Remove(ctx context.Context, cred auth.Credential, productID string) (*Snapshot, error)
	Toggle(ctx context.Context, cred auth.Credential, productID string) (*Snapshot, error)
	SelectAll(ctx context.Context, cred auth.Credential, selected bool) (*Snapshot, error)
	SelectVoucher(ctx context.Context, cred auth.Credential, productID, voucherID string) (*Snapshot, error)
	SelectedLines(ctx context.Context, cred auth.Credential) ([]SelectedLine, error)
	Offers(ctx context.Context, cred auth.Credential, productID string) ([]backend.Voucher, error)
	Unmount(sessionID string)
	Forget(sessionID string) error
}

type view struct {
	mu        sync.Mutex
	selection *selection.Manager
	vouchers  map[string]string
	lines     []backend.Product
	offers    map[string][]backend.Voucher
	snapshot  *Snapshot
}

type service struct {
	backend Backend
	logg    *logger.Logger
	now     func() time.Time

	mu    sync.Mutex
	views map[string]*view
}

// NewService builds the cart view service.
func NewService(api Backend, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("cart backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		backend: api,
		logg:    logg,
		now:     time.Now,
		views:   map[string]*view{},
	}, nil
}

func (s *service) viewFor(sessionID string) *view {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[sessionID]
	if !ok {
		v = &view{
			selection: selection.NewManager(),
			vouchers:  map[string]string{},
			offers:    map[string][]backend.Voucher{},
		}
		s.views[sessionID] = v
	}
	return v
}

func (s *service) Fetch(ctx context.Context, cred auth.Credential) (*Snapshot, error) {
	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()
	return s.refreshLocked(ctx, cred, v)
}

func (s *service) Add(ctx context.Context, cred auth.Credential, productID string, quantity int, voucherID string) (*Snapshot, error) {
	productID = strings.TrimSpace(productID)
	fields := map[string]string{}
	if productID == "" {
		fields["product_id"] = "is required"
	}
	if quantity < 1 {
		fields["quantity"] = "must be at least 1"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(map[string]any{"fields": fields})
	}

	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := s.backend.AddToCart(ctx, cred, productID, quantity, voucherID); err != nil {
		return nil, err
	}
	if voucherID != "" {
		v.vouchers[productID] = voucherID
	}
	return s.refreshLocked(ctx, cred, v)
}

func (s *service) UpdateQuantity(ctx context.Context, cred auth.Credential, productID string, quantity int) (*Snapshot, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"product_id": productID})
	}

	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx, cred, v); err != nil {
		return nil, err
	}
	line, ok := findLine(v.lines, productID)
	if !ok {
		return nil, notInCart(productID)
	}
	if quantity > line.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("only %d left in stock", line.Stock)).
			WithDetails(map[string]any{"product_id": productID, "stock": line.Stock})
	}

	if _, err := s.backend.UpdateCartQuantity(ctx, cred, productID, quantity); err != nil {
		return nil, err
	}
	return s.refreshLocked(ctx, cred, v)
}

func (s *service) Remove(ctx context.Context, cred auth.Credential, productID string) (*Snapshot, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := s.backend.RemoveFromCart(ctx, cred, productID); err != nil {
		return nil, err
	}
	delete(v.vouchers, productID)
	return s.refreshLocked(ctx, cred, v)
}

func (s *service) Toggle(ctx context.Context, cred auth.Credential, productID string) (*Snapshot, error) {
	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx, cred, v); err != nil {
		return nil, err
	}
	if _, err := v.selection.Toggle(productID); err != nil {
		return nil, err
	}
	return s.priceLocked(ctx, v), nil
}

func (s *service) SelectAll(ctx context.Context, cred auth.Credential, selected bool) (*Snapshot, error) {
	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx, cred, v); err != nil {
		return nil, err
	}
	v.selection.SelectAll(selected)
	return s.priceLocked(ctx, v), nil
}

func (s *service) SelectVoucher(ctx context.Context, cred auth.Credential, productID, voucherID string) (*Snapshot, error) {
	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx, cred, v); err != nil {
		return nil, err
	}
	line, ok := findLine(v.lines, productID)
	if !ok {
		return nil, notInCart(productID)
	}
	if voucherID == "" {
		delete(v.vouchers, productID)
		return s.priceLocked(ctx, v), nil
	}
	if err := CheckVoucher(PricingLine(line), v.offers[productID], voucherID); err != nil {
		return nil, err
	}
	v.vouchers[productID] = voucherID
	return s.priceLocked(ctx, v), nil
}

func (s *service) SelectedLines(ctx context.Context, cred auth.Credential) ([]SelectedLine, error) {
	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx, cred, v); err != nil {
		return nil, err
	}
	selected := v.selection.Selected()
	out := make([]SelectedLine, 0, len(selected))
	for _, id := range selected {
		line, ok := findLine(v.lines, id)
		if !ok || line.Stock <= 0 {
			continue
		}
		qty, ok := line.Quantity.IntValue()
		if !ok || qty < 1 {
			continue
		}
		out = append(out, SelectedLine{
			Product:  line,
			Quantity: qty,
			Voucher:  findVoucher(v.offers[id], v.vouchers[id]),
		})
	}
	return out, nil
}

// Offers returns the vouchers offered for a cart line as of the last fetch.
func (s *service) Offers(ctx context.Context, cred auth.Credential, productID string) ([]backend.Voucher, error) {
	v := s.viewFor(cred.SessionID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx, cred, v); err != nil {
		return nil, err
	}
	if _, ok := findLine(v.lines, productID); !ok {
		return nil, notInCart(productID)
	}
	return append([]backend.Voucher(nil), v.offers[productID]...), nil
}

// Unmount drops the view; the next fetch starts with a fresh selection.
func (s *service) Unmount(sessionID string) {
	s.mu.Lock()
	delete(s.views, sessionID)
	s.mu.Unlock()
}

func (s *service) Forget(sessionID string) error {
	s.Unmount(sessionID)
	return nil
}

func (s *service) ensureLoadedLocked(ctx context.Context, cred auth.Credential, v *view) error {
	if v.snapshot != nil {
		return nil
	}
	_, err := s.refreshLocked(ctx, cred, v)
	return err
}

// refreshLocked re-reads the cart and its vouchers. On failure the previous state is kept.
func (s *service) refreshLocked(ctx context.Context, cred auth.Credential, v *view) (*Snapshot, error) {
	lines, err := s.backend.GetCart(ctx, cred)
	if err != nil {
		return nil, err
	}
	offers, err := s.fetchOffers(ctx, cred, lines)
	if err != nil {
		return nil, err
	}

	v.lines = lines
	v.offers = offers

	reconcile := make([]selection.Line, 0, len(lines))
	for _, line := range lines {
		reconcile = append(reconcile, selection.Line{ID: line.ID, Stock: line.Stock})
	}
	v.selection.Reconcile(reconcile)
	s.pruneVouchersLocked(ctx, v)

	return s.priceLocked(ctx, v), nil
}

// fetchOffers looks up vouchers for every line concurrently. A failed lookup leaves that line
// without offers.
func (s *service) fetchOffers(ctx context.Context, cred auth.Credential, lines []backend.Product) (map[string][]backend.Voucher, error) {
	results := make([][]backend.Voucher, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(voucherLookupLimit)
	for i, line := range lines {
		g.Go(func() error {
			vouchers, err := s.backend.ProductVouchers(gctx, cred, line.ID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				lctx := s.logg.WithField(gctx, "product_id", line.ID)
				lctx = s.logg.WithField(lctx, "error", err.Error())
				s.logg.Warn(lctx, "cart.vouchers.lookup_failed")
				return nil
			}
			results[i] = vouchers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	offers := make(map[string][]backend.Voucher, len(lines))
	for i, line := range lines {
		offers[line.ID] = results[i]
	}
	return offers, nil
}

// pruneVouchersLocked drops voucher choices for vanished lines, withdrawn vouchers and
// vouchers the current subtotal no longer qualifies for.
func (s *service) pruneVouchersLocked(ctx context.Context, v *view) {
	for productID, voucherID := range v.vouchers {
		line, ok := findLine(v.lines, productID)
		if !ok {
			delete(v.vouchers, productID)
			continue
		}
		if err := CheckVoucher(PricingLine(line), v.offers[productID], voucherID); err != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{"product_id": productID, "voucher_id": voucherID})
			s.logg.Debug(lctx, "cart.voucher.dropped")
			delete(v.vouchers, productID)
		}
	}
}

func (s *service) priceLocked(ctx context.Context, v *view) *Snapshot {
	lines := make([]pricing.Line, 0, len(v.lines))
	chosen := make(map[string]*pricing.Voucher, len(v.vouchers))
	for _, line := range v.lines {
		lines = append(lines, PricingLine(line))
		if voucher := findVoucher(v.offers[line.ID], v.vouchers[line.ID]); voucher != nil {
			chosen[line.ID] = PricingVoucher(voucher)
		}
	}

	summary, err := pricing.Summarize(lines, chosen, v.selection.IsSelected)
	snapshot := &Snapshot{
		Lines:          make([]LineView, 0, len(v.lines)),
		Total:          summary.Total,
		TotalFormatted: pricing.FormatVND(summary.Total),
		SelectedCount:  summary.SelectedCount,
		AllSelected:    v.selection.AllSelected(),
		FetchedAt:      s.now().UTC(),
	}
	for _, issue := range multierr.Errors(err) {
		snapshot.Issues = append(snapshot.Issues, issue.Error())
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "issues", len(snapshot.Issues)), "cart.pricing.issues")
	}

	for _, line := range v.lines {
		quote, _ := summary.Quote(line.ID)
		snapshot.Lines = append(snapshot.Lines, LineView{
			ProductID:         line.ID,
			Name:              line.Name,
			ImageURL:          line.ImageURL,
			ShopName:          line.ShopName,
			Price:             line.Price,
			Quantity:          line.Quantity,
			Stock:             line.Stock,
			InStock:           line.Stock > 0,
			Selected:          v.selection.IsSelected(line.ID),
			Subtotal:          quote.Subtotal,
			Discount:          quote.Discount,
			Total:             quote.Total,
			TotalFormatted:    pricing.FormatVND(quote.Total),
			VoucherID:         v.vouchers[line.ID],
			VoucherApplied:    quote.VoucherApplied,
			VoucherIneligible: quote.VoucherIneligible,
			Vouchers:          voucherOptions(quote, v.offers[line.ID], v.vouchers[line.ID]),
		})
	}
	v.snapshot = snapshot
	return snapshot
}

// CheckVoucher verifies that voucherID is offered for the line and that the line's subtotal
// meets its minimum order value.
func CheckVoucher(line pricing.Line, offers []backend.Voucher, voucherID string) error {
	voucher := findVoucher(offers, voucherID)
	if voucher == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher is not available for this product").
			WithDetails(map[string]any{"product_id": line.ProductID, "voucher_id": voucherID})
	}
	subtotal, err := pricing.Subtotal(line)
	if err != nil {
		return err
	}
	if !pricing.Eligible(subtotal, PricingVoucher(voucher)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "order value does not meet the voucher minimum").
			WithDetails(map[string]any{"product_id": line.ProductID, "voucher_id": voucherID})
	}
	return nil
}

func voucherOptions(quote pricing.LineQuote, offers []backend.Voucher, chosen string) []VoucherOption {
	options := make([]VoucherOption, 0, len(offers))
	for i := range offers {
		offer := &offers[i]
		options = append(options, VoucherOption{
			ID:            offer.ID,
			Code:          offer.Code,
			DiscountType:  offer.DiscountType,
			DiscountValue: offer.DiscountValue,
			MinOrderValue: offer.MinOrderValue,
			Eligible:      !quote.Invalid && pricing.Eligible(quote.Subtotal, PricingVoucher(offer)),
			Selected:      offer.ID == chosen,
		})
	}
	return options
}

func findLine(lines []backend.Product, productID string) (backend.Product, bool) {
	for _, line := range lines {
		if line.ID == productID {
			return line, true
		}
	}
	return backend.Product{}, false
}

func findVoucher(offers []backend.Voucher, voucherID string) *backend.Voucher {
	if voucherID == "" {
		return nil
	}
	for i := range offers {
		if offers[i].ID == voucherID {
			v := offers[i]
			return &v
		}
	}
	return nil
}

func notInCart(productID string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart").
		WithDetails(map[string]any{"product_id": productID})
}
