package decimal

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// RoundingMode selects how amounts are rounded to fixed places
type RoundingMode string

const (
	// RoundHalfUp rounds halves away from zero (12.345 -> 12.35)
	RoundHalfUp RoundingMode = "half_up"
	// RoundBank rounds halves to the nearest even digit (12.345 -> 12.34)
	RoundBank RoundingMode = "bank"
)

// Valid reports whether m is a known rounding mode
func (m RoundingMode) Valid() bool {
	return m == RoundHalfUp || m == RoundBank
}

// numericPrefix matches the longest leading float literal
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// MaxExponent bounds the decimal exponent Parse accepts. Values scaled
// beyond it expand to unbounded digit strings when rendered.
const MaxExponent = 64

// Parse reads the leading numeric value of s.
// Surrounding blanks and trailing garbage are ignored; unparsable or empty
// input yields zero, as does a value whose exponent exceeds MaxExponent
// in either direction.
func Parse(s string) decimal.Decimal {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return Zero
	}
	m = strings.TrimPrefix(m, "+")
	if strings.HasPrefix(m, ".") {
		m = "0" + m
	} else if strings.HasPrefix(m, "-.") {
		m = "-0" + m[1:]
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return Zero
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return Zero
	}
	return d
}

// Round rounds d to places using mode. Unknown modes round half up.
func Round(d decimal.Decimal, places int32, mode RoundingMode) decimal.Decimal {
	if mode == RoundBank {
		return d.RoundBank(places)
	}
	return d.Round(places)
}

// Fixed renders d with exactly places fractional digits, using sep as the
// decimal separator.
func Fixed(d decimal.Decimal, places int32, mode RoundingMode, sep string) string {
	s := Round(d, places, mode).StringFixed(places)
	if sep == "." {
		return s
	}
	return strings.Replace(s, ".", sep, 1)
}
