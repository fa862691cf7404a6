package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatVND renders an amount the way vi-VN locales display đồng, e.g. "180.000 VND".
// Rounding to whole đồng happens here only.
func FormatVND(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	negative := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(0)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(" VND")
	return b.String()
}
