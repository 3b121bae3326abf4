// Package money holds the canonical price type helpers. Prices are
// shopspring decimals everywhere inside the service; strings such as
// "$140.00" only exist at the presentation edge and in legacy payloads.
package money

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for currency amounts.
const Places = 2

func init() {
	// API consumers expect JSON numbers, not quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true
}

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Parse converts a display price ("$140.00", "1,299.50", " 12 ") into a
// decimal. Malformed input yields zero; Parse never fails.
func Parse(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromAny converts loosely typed price input (JSON number, numeric or
// formatted string, decimal) into a decimal. Anything else is zero.
func FromAny(v interface{}) decimal.Decimal {
	switch p := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return p
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(p)
	case float32:
		return FromAny(float64(p))
	case int:
		return decimal.NewFromInt(int64(p))
	case int64:
		return decimal.NewFromInt(p)
	case json.Number:
		return Parse(p.String())
	case string:
		return Parse(p)
	default:
		return decimal.Zero
	}
}

// ParseAmount is the strict counterpart of FromAny for user-submitted
// amounts. It accepts numbers and strings such as "42", "$1,299.50";
// anything else, including a string with no digits, reports false.
func ParseAmount(v interface{}) (decimal.Decimal, bool) {
	switch p := v.(type) {
	case decimal.Decimal:
		return p, true
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(p), true
	case float32:
		return ParseAmount(float64(p))
	case int:
		return decimal.NewFromInt(int64(p)), true
	case int64:
		return decimal.NewFromInt(p), true
	case json.Number:
		return ParseAmount(p.String())
	case string:
		str := strings.TrimSpace(p)
		negative := strings.HasPrefix(str, "-")
		str = strings.TrimPrefix(strings.TrimPrefix(str, "-"), "$")
		str = strings.ReplaceAll(str, ",", "")
		if str == "" || str[0] < '0' || str[0] > '9' && str[0] != '.' {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(str)
		if err != nil {
			return decimal.Zero, false
		}
		if negative {
			d = d.Neg()
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// Format renders an amount for display, e.g. "$140.00" or "-$5.00".
func Format(d decimal.Decimal) string {
	d = Round(d)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(Places)
	}
	return "$" + d.StringFixed(Places)
}

// Float returns the rounded amount as a float64 for JSON responses.
func Float(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
