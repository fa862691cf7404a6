package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Line is the pricing view of one cart line.
type Line struct {
	ProductID string
	Price     types.Numeric
	Quantity  types.Numeric
	Stock     int
}

// InStock reports whether the line can contribute to an order total.
func (l Line) InStock() bool {
	return l.Stock > 0
}

// Voucher is the pricing view of a product voucher.
type Voucher struct {
	ID            string
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue types.Numeric
	MinOrderValue *types.Numeric
}

// LineQuote is the displayed price of one line.
type LineQuote struct {
	ProductID         string
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
	VoucherID         string
	VoucherApplied    bool
	VoucherIneligible bool
	Invalid           bool
}

// Summary aggregates line quotes over the selected, in-stock lines.
type Summary struct {
	Lines         []LineQuote
	Total         decimal.Decimal
	SelectedCount int
}

// Quote returns the summary line for productID.
func (s Summary) Quote(productID string) (LineQuote, bool) {
	for _, quote := range s.Lines {
		if quote.ProductID == productID {
			return quote, true
		}
	}
	return LineQuote{}, false
}

// QuoteLine prices a single line with an optional voucher. A malformed price or quantity
// yields a zero quote plus a validation error; a voucher that is ineligible or malformed is
// not applied.
func QuoteLine(line Line, voucher *Voucher) (LineQuote, error) {
	quote := LineQuote{
		ProductID: line.ProductID,
		Subtotal:  decimal.Zero,
		Discount:  decimal.Zero,
		Total:     decimal.Zero,
	}

	subtotal, err := Subtotal(line)
	if err != nil {
		quote.Invalid = true
		return quote, err
	}
	quote.Subtotal = subtotal
	quote.Total = subtotal

	if voucher == nil {
		return quote, nil
	}
	quote.VoucherID = voucher.ID

	if !Eligible(subtotal, voucher) {
		quote.VoucherIneligible = true
		return quote, nil
	}

	discount, err := discountFor(subtotal, voucher)
	if err != nil {
		return quote, err
	}
	quote.Discount = discount
	quote.Total = subtotal.Sub(discount)
	quote.VoucherApplied = true
	return quote, nil
}

// Subtotal returns price × quantity, exact.
func Subtotal(line Line) (decimal.Decimal, error) {
	fields := map[string]string{}
	price, ok := line.Price.Decimal()
	if !ok {
		fields["price"] = "must be numeric"
	} else if price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	qty, ok := line.Quantity.Decimal()
	switch {
	case !ok || !qty.IsInteger():
		fields["quantity"] = "must be a whole number"
	case !qty.IsPositive():
		fields["quantity"] = "must be positive"
	}
	if len(fields) > 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart line %s has a malformed price or quantity", line.ProductID)).
			WithDetails(map[string]any{"product_id": line.ProductID, "fields": fields})
	}
	return price.Mul(qty), nil
}

// Eligible reports whether subtotal meets the voucher's minimum order value. A minimum that
// cannot be parsed makes the voucher ineligible.
func Eligible(subtotal decimal.Decimal, voucher *Voucher) bool {
	if voucher == nil {
		return false
	}
	if voucher.MinOrderValue == nil || !voucher.MinOrderValue.IsSet() {
		return true
	}
	minimum, ok := voucher.MinOrderValue.Decimal()
	if !ok {
		return false
	}
	return subtotal.GreaterThanOrEqual(minimum)
}

func discountFor(subtotal decimal.Decimal, voucher *Voucher) (decimal.Decimal, error) {
	value, ok := voucher.DiscountValue.Decimal()
	if !ok || value.IsNegative() {
		return decimal.Zero, malformedVoucher(voucher, "discount value must be a non-negative number")
	}

	switch voucher.DiscountType {
	case enums.DiscountTypePercentage:
		if value.GreaterThan(hundred) {
			return decimal.Zero, malformedVoucher(voucher, "percentage must be between 0 and 100")
		}
		return subtotal.Mul(value).Shift(-2), nil
	case enums.DiscountTypeFixed:
		// never below zero
		if value.GreaterThan(subtotal) {
			return subtotal, nil
		}
		return value, nil
	default:
		return decimal.Zero, malformedVoucher(voucher, fmt.Sprintf("unknown discount type %q", voucher.DiscountType))
	}
}

func malformedVoucher(voucher *Voucher, reason string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("voucher %s cannot be applied: %s", voucherLabel(voucher), reason)).
		WithDetails(map[string]any{"voucher_id": voucher.ID})
}

func voucherLabel(voucher *Voucher) string {
	if voucher.Code != "" {
		return voucher.Code
	}
	return voucher.ID
}

// Summarize quotes every line and totals the ones that are selected and in stock.
// A product id counts once: later lines with the same id are reported and left out.
// Every line issue is returned, combined.
func Summarize(lines []Line, vouchers map[string]*Voucher, selected func(productID string) bool) (Summary, error) {
	summary := Summary{
		Lines: make([]LineQuote, 0, len(lines)),
		Total: decimal.Zero,
	}

	var errs error
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.ProductID] {
			errs = multierr.Append(errs, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart line %s appears more than once; only the first is priced", line.ProductID)).
				WithDetails(map[string]any{"product_id": line.ProductID}))
			continue
		}
		seen[line.ProductID] = true

		quote, err := QuoteLine(line, vouchers[line.ProductID])
		errs = multierr.Append(errs, err)
		summary.Lines = append(summary.Lines, quote)

		if selected == nil || !selected(line.ProductID) || !line.InStock() || quote.Invalid {
			continue
		}
		summary.Total = summary.Total.Add(quote.Total)
		summary.SelectedCount++
	}
	return summary, errs
}
