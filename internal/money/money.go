// Package money holds the cent-exact helpers shared by the importers and the
// heuristics. Amounts travel as float64 through the app; anything that sums,
// rounds or parses them goes through decimal first.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned by Parse for blank input.
var ErrEmpty = errors.New("empty amount")

var stripper = strings.NewReplacer("$", "", "₹", "", "€", "", "£", "", ",", "", " ", "")

// Round rounds to cents, half away from zero.
func Round(f float64) float64 {
	return RoundTo(f, 2)
}

// RoundTo rounds to the given number of decimal places.
func RoundTo(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

// Sum adds amounts without accumulating float error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}

// Abs returns |f| through decimal so -0 never leaks into output.
func Abs(f float64) float64 {
	return decimal.NewFromFloat(f).Abs().InexactFloat64()
}

// Parse reads a statement amount such as "$1,234.50", "-₹ 99" or "(12.00)".
// Parenthesised values are negative.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = stripper.Replace(s)
	if s == "" {
		return 0, ErrEmpty
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), nil
}

// Equal reports whether a and b are within tolerance of each other.
func Equal(a, b, tolerance float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

// Diff returns |a-b| computed in decimal.
func Diff(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().InexactFloat64()
}
