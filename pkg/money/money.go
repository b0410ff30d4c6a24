// Package money carries rupiah amounts as exact decimals and converts them
// to and from the grouped-thousands text operators type into forms.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact currency amount. The zero value is zero rupiah.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

// stripped are the grouping characters removed before parsing text input.
var stripped = strings.NewReplacer(".", "", ",", "", " ", "")

// Parse normalizes raw operator input into an amount. Numbers are returned
// as-is; strings lose every '.', ',' and space before parsing. Anything that
// cannot be read yields zero.
func Parse(raw any) Money {
	switch v := raw.(type) {
	case nil:
		return Zero
	case Money:
		return v
	case *Money:
		if v == nil {
			return Zero
		}
		return *v
	case decimal.Decimal:
		return Money{d: v}
	case int:
		return FromInt(int64(v))
	case int8:
		return FromInt(int64(v))
	case int16:
		return FromInt(int64(v))
	case int32:
		return FromInt(int64(v))
	case int64:
		return FromInt(v)
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return fromUint(uint64(v))
	case uint16:
		return fromUint(uint64(v))
	case uint32:
		return fromUint(uint64(v))
	case uint64:
		return fromUint(v)
	case float32:
		if !finite(float64(v)) {
			return Zero
		}
		return Money{d: decimal.NewFromFloat32(v)}
	case float64:
		if !finite(v) {
			return Zero
		}
		return Money{d: decimal.NewFromFloat(v)}
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return Zero
		}
		return Money{d: d}
	case string:
		return parseString(v)
	case []byte:
		return parseString(string(v))
	default:
		return Zero
	}
}

func fromUint(v uint64) Money {
	return parseString(strconv.FormatUint(v, 10))
}

// finite rejects NaN and the infinities, which decimal cannot represent.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseString(s string) Money {
	cleaned := stripped.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Zero
	}
	return Money{d: d}
}

func FromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// Mul scales the amount by a quantity such as a weight in kg.
func (m Money) Mul(q decimal.Decimal) Money { return Money{d: m.d.Mul(q)} }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) LessThan(o Money) bool { return m.d.LessThan(o.d) }

func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

// NonNegative floors the amount at zero.
func (m Money) NonNegative() Money {
	if m.d.IsNegative() {
		return Zero
	}
	return m
}

func Sum(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format renders the amount rounded to whole rupiah with '.' between
// thousands groups, e.g. 1500000 -> "1.500.000".
func (m Money) Format() string {
	digits := m.d.Round(0).Abs().StringFixed(0)
	var b strings.Builder
	if m.d.Round(0).IsNegative() {
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
	return b.String()
}

// Rupiah prefixes Format with the currency symbol.
func (m Money) Rupiah() string {
	return "Rp " + m.Format()
}

func (m Money) String() string { return m.d.String() }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts plain numbers as well as formatted strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*m = Zero
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("money: %w", err)
		}
		*m = parseString(s)
		return nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return fmt.Errorf("money: invalid amount %s", trimmed)
	}
	*m = Money{d: d}
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}

func (m *Money) Scan(value any) error {
	if value == nil {
		*m = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = Money{d: d}
	return nil
}
