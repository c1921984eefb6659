// Package format canonicalizes IDOC scalars for the EDIFACT grammar.
//
// All functions are lenient: malformed input is passed through or coerced
// to zero, never rejected.
package format

import (
	"strings"

	"github.com/rezonia/idoc-edi/internal/decimal"
)

// DecimalComma is the fractional separator of the target grammar
const DecimalComma = ","

// Date turns YYYY-MM-DD into YYYYMMDD by dropping every '-'.
// The value is not checked against the calendar.
func Date(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// Time turns HH:MM:SS into HHMMSS by dropping every ':'
func Time(s string) string {
	return strings.ReplaceAll(s, ":", "")
}

// NumberFormat renders amounts as fixed-point strings
type NumberFormat struct {
	Decimals  int32
	Rounding  decimal.RoundingMode
	Separator string
}

// DefaultNumberFormat is two decimals, half up, decimal comma
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{
		Decimals:  2,
		Rounding:  decimal.RoundHalfUp,
		Separator: DecimalComma,
	}
}

// Format parses s leniently (missing or unparsable input counts as zero)
// and renders it with f's decimals and separator.
func (f NumberFormat) Format(s string) string {
	sep := f.Separator
	if sep == "" {
		sep = DecimalComma
	}
	return decimal.Fixed(decimal.Parse(s), f.Decimals, f.Rounding, sep)
}

// Number renders s with the given decimals using the default format
func Number(s string, decimals int32) string {
	f := DefaultNumberFormat()
	f.Decimals = decimals
	return f.Format(s)
}
