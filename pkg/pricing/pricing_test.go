package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

func line(id string, price, qty int64, stock int) Line {
	return Line{
		ProductID: id,
		Price:     types.NumericFromInt(price),
		Quantity:  types.NumericFromInt(qty),
		Stock:     stock,
	}
}

func percentVoucher(id string, pct int64) *Voucher {
	return &Voucher{ID: id, Code: id, DiscountType: enums.DiscountTypePercentage, DiscountValue: types.NumericFromInt(pct)}
}

func fixedVoucher(id string, amount int64, minOrder *int64) *Voucher {
	v := &Voucher{ID: id, Code: id, DiscountType: enums.DiscountTypeFixed, DiscountValue: types.NumericFromInt(amount)}
	if minOrder != nil {
		m := types.NumericFromInt(*minOrder)
		v.MinOrderValue = &m
	}
	return v
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestQuoteLineWithoutVoucherIsPriceTimesQuantity(t *testing.T) {
	cases := []struct {
		price, qty int64
	}{
		{0, 1}, {1, 1}, {50000, 3}, {99999, 7},
	}
	for _, tc := range cases {
		quote, err := QuoteLine(line("p", tc.price, tc.qty, 10), nil)
		require.NoError(t, err)
		assert.True(t, quote.Total.Equal(dec(tc.price*tc.qty)), "price=%d qty=%d total=%s", tc.price, tc.qty, quote.Total)
		assert.True(t, quote.Discount.IsZero())
	}
}

func TestQuoteLineUsesExactDecimalArithmetic(t *testing.T) {
	l := Line{ProductID: "p", Price: types.ParseNumeric("0.1"), Quantity: types.NumericFromInt(3), Stock: 1}
	quote, err := QuoteLine(l, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.3", quote.Total.String())
}

func TestQuoteLinePercentage(t *testing.T) {
	quote, err := QuoteLine(line("a", 100000, 2, 5), percentVoucher("v10", 10))
	require.NoError(t, err)
	assert.True(t, quote.VoucherApplied)
	assert.True(t, quote.Total.Equal(dec(180000)), "got %s", quote.Total)
	assert.True(t, quote.Discount.Equal(dec(20000)))

	full, err := QuoteLine(line("a", 100000, 2, 5), percentVoucher("v100", 100))
	require.NoError(t, err)
	assert.True(t, full.Total.IsZero(), "100%% voucher should zero the line, got %s", full.Total)
}

func TestQuoteLineFixedClampsToZero(t *testing.T) {
	quote, err := QuoteLine(line("a", 30000, 1, 5), fixedVoucher("big", 50000, nil))
	require.NoError(t, err)
	assert.True(t, quote.Total.IsZero(), "got %s", quote.Total)
	assert.True(t, quote.Discount.Equal(dec(30000)))

	partial, err := QuoteLine(line("a", 30000, 2, 5), fixedVoucher("small", 10000, nil))
	require.NoError(t, err)
	assert.True(t, partial.Total.Equal(dec(50000)))
}

func TestQuoteLineIneligibleVoucherIsNotApplied(t *testing.T) {
	minOrder := int64(250000)
	withVoucher, err := QuoteLine(line("a", 200000, 1, 5), fixedVoucher("v", 50000, &minOrder))
	require.NoError(t, err)
	withoutVoucher, err := QuoteLine(line("a", 200000, 1, 5), nil)
	require.NoError(t, err)

	assert.True(t, withVoucher.Total.Equal(dec(200000)), "got %s", withVoucher.Total)
	assert.True(t, withVoucher.Total.Equal(withoutVoucher.Total))
	assert.True(t, withVoucher.VoucherIneligible)
	assert.False(t, withVoucher.VoucherApplied)
}

func TestQuoteLineMinimumIsInclusive(t *testing.T) {
	minOrder := int64(200000)
	quote, err := QuoteLine(line("a", 200000, 1, 5), fixedVoucher("v", 50000, &minOrder))
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(dec(150000)))
}

func TestQuoteLineMalformedInputsContributeZero(t *testing.T) {
	l := Line{ProductID: "bad", Price: types.ParseNumeric("abc"), Quantity: types.NumericFromInt(2), Stock: 5}
	quote, err := QuoteLine(l, percentVoucher("v", 10))
	require.Error(t, err)
	assert.True(t, quote.Invalid)
	assert.True(t, quote.Total.IsZero())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	fractional := Line{ProductID: "frac", Price: types.NumericFromInt(10), Quantity: types.ParseNumeric("1.5"), Stock: 5}
	_, err = QuoteLine(fractional, nil)
	assert.Error(t, err)
}

func TestQuoteLineMalformedVoucherFallsBackToSubtotal(t *testing.T) {
	over := percentVoucher("over", 150)
	quote, err := QuoteLine(line("a", 1000, 1, 5), over)
	require.Error(t, err)
	assert.True(t, quote.Total.Equal(dec(1000)))
	assert.False(t, quote.VoucherApplied)

	unknown := &Voucher{ID: "x", DiscountType: "BOGO", DiscountValue: types.NumericFromInt(1)}
	quote, err = QuoteLine(line("a", 1000, 1, 5), unknown)
	require.Error(t, err)
	assert.True(t, quote.Total.Equal(dec(1000)))
}

func TestQuoteLineDoesNotMutateInputs(t *testing.T) {
	minOrder := int64(10)
	voucher := fixedVoucher("v", 500, &minOrder)
	l := line("a", 1000, 2, 5)
	before := *voucher

	_, err := QuoteLine(l, voucher)
	require.NoError(t, err)

	assert.Equal(t, before.DiscountValue.String(), voucher.DiscountValue.String())
	assert.Equal(t, before.MinOrderValue, voucher.MinOrderValue)
	assert.Equal(t, "2", l.Quantity.String())
}

func TestSummarizeSelectedInStockLines(t *testing.T) {
	lines := []Line{
		line("A", 100000, 2, 5),
		line("B", 50000, 1, 3),
	}
	vouchers := map[string]*Voucher{"A": percentVoucher("v10", 10)}
	selected := map[string]bool{"A": true, "B": true}

	summary, err := Summarize(lines, vouchers, func(id string) bool { return selected[id] })
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(dec(230000)), "got %s", summary.Total)
	assert.Equal(t, 2, summary.SelectedCount)

	selected["B"] = false
	summary, err = Summarize(lines, vouchers, func(id string) bool { return selected[id] })
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(dec(180000)), "got %s", summary.Total)

	quoteB, ok := summary.Quote("B")
	require.True(t, ok)
	assert.True(t, quoteB.Total.Equal(dec(50000)), "unselected lines still get a line quote")
}

func TestSummarizeIgnoresOutOfStockEvenWhenSelected(t *testing.T) {
	lines := []Line{
		line("A", 100000, 1, 0),
		line("B", 50000, 1, 3),
	}
	summary, err := Summarize(lines, nil, func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(dec(50000)))
	assert.Equal(t, 1, summary.SelectedCount)
}

func TestSummarizeCombinesLineIssues(t *testing.T) {
	lines := []Line{
		{ProductID: "x", Price: types.ParseNumeric("nope"), Quantity: types.NumericFromInt(1), Stock: 1},
		{ProductID: "y", Price: types.NumericFromInt(10), Quantity: types.ParseNumeric(""), Stock: 1},
		line("z", 10, 1, 1),
	}
	summary, err := Summarize(lines, nil, func(string) bool { return true })
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.True(t, summary.Total.Equal(dec(10)))
}

func TestQuoteLineQuantityBeyondInt64IsExact(t *testing.T) {
	l := Line{ProductID: "A", Price: types.NumericFromInt(1), Quantity: types.ParseNumeric("18446744073709551617"), Stock: 1}
	quote, err := QuoteLine(l, nil)
	require.NoError(t, err)
	want := decimal.RequireFromString("18446744073709551617")
	assert.True(t, quote.Subtotal.Equal(want), "got %s", quote.Subtotal)
	assert.True(t, quote.Total.Equal(want), "got %s", quote.Total)
}

func TestSummarizeCountsEachProductOnce(t *testing.T) {
	lines := []Line{
		line("A", 100, 1, 5),
		line("A", 100, 1, 5),
	}
	summary, err := Summarize(lines, nil, func(string) bool { return true })
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.True(t, summary.Total.Equal(dec(100)), "got %s", summary.Total)
	assert.Equal(t, 1, summary.SelectedCount)
	require.Len(t, summary.Lines, 1)

	quote, ok := summary.Quote("A")
	require.True(t, ok)
	assert.True(t, quote.Total.Equal(dec(100)))
}

func TestFormatVND(t *testing.T) {
	cases := map[string]decimal.Decimal{
		"0 VND":         decimal.Zero,
		"999 VND":       dec(999),
		"180.000 VND":   dec(180000),
		"1.234.567 VND": dec(1234567),
		"-5.000 VND":    dec(-5000),
		"1.000 VND":     decimal.RequireFromString("999.6"),
	}
	for want, amount := range cases {
		assert.Equal(t, want, FormatVND(amount))
	}
}
