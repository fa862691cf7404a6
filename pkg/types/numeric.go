package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric is a lenient decimal. Values that fail to parse are kept as raw text and
// reported through Valid instead of failing the whole payload.
type Numeric struct {
	raw   string
	value decimal.Decimal
	valid bool
	set   bool
}

func NumericFromInt(v int64) Numeric {
	d := decimal.NewFromInt(v)
	return Numeric{raw: d.String(), value: d, valid: true, set: true}
}

func NumericFromDecimal(d decimal.Decimal) Numeric {
	return Numeric{raw: d.String(), value: d, valid: true, set: true}
}

// ParseNumeric never fails; check Valid on the result.
func ParseNumeric(raw string) Numeric {
	trimmed := strings.TrimSpace(raw)
	n := Numeric{raw: raw, set: trimmed != ""}
	if trimmed == "" {
		return n
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return n
	}
	n.value = d
	n.valid = true
	return n
}

// Valid reports whether the value parsed as a number.
func (n Numeric) Valid() bool { return n.valid }

// IsSet reports whether any value, parseable or not, was provided.
func (n Numeric) IsSet() bool { return n.set }

func (n Numeric) Raw() string { return n.raw }

func (n Numeric) Decimal() (decimal.Decimal, bool) {
	if !n.valid {
		return decimal.Zero, false
	}
	return n.value, true
}

// Int returns the value when it is integral and fits in an int64.
func (n Numeric) Int() (int64, bool) {
	if !n.valid || !n.value.IsInteger() || !n.value.BigInt().IsInt64() {
		return 0, false
	}
	return n.value.IntPart(), true
}

// IntValue is Int narrowed to the platform int.
func (n Numeric) IntValue() (int, bool) {
	v, ok := n.Int()
	if !ok || v < math.MinInt || v > math.MaxInt {
		return 0, false
	}
	return int(v), true
}

func (n Numeric) String() string {
	if n.valid {
		return n.value.String()
	}
	return n.raw
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = Numeric{}
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			*n = Numeric{raw: string(trimmed), set: true}
			return nil
		}
		*n = ParseNumeric(raw)
		return nil
	}
	*n = ParseNumeric(string(trimmed))
	return nil
}
