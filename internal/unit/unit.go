// Package unit normalizes and formats quantities per unit-of-measure.
// "UN" is integer-counted; every other unit is fractional with 3 decimals.
package unit

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// IsCount reports whether the unit is integer-counted.
func IsCount(u string) bool {
	return strings.EqualFold(strings.TrimSpace(u), domain.UnitCount)
}

// Decimals returns the number of decimal places carried for the unit.
func Decimals(u string) int {
	if IsCount(u) {
		return 0
	}
	return 3
}

// Parse normalizes a raw numeric string for the given unit. Integer-counted
// units round to the nearest whole number and reject negative results;
// fractional units keep 3 decimal digits. Comma decimal separators are
// accepted. Non-finite input fails with ErrInvalidQuantity.
func Parse(u string, raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0, domain.ErrInvalidQuantity
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.ErrInvalidQuantity
	}
	if IsCount(u) {
		v = math.Round(v)
		if v < 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return v, nil
	}
	return math.Round(v*1000) / 1000, nil
}

// ParsePositive is Parse with the additional requirement that the normalized
// magnitude is strictly positive.
func ParsePositive(u string, raw string) (float64, error) {
	v, err := Parse(u, raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	return v, nil
}

// Format renders a quantity for display with locale-aware grouping: zero
// decimal places for integer-counted units, exactly three otherwise.
func Format(u string, v float64) string {
	if IsCount(u) {
		return printer.Sprintf("%.0f", v)
	}
	return printer.Sprintf("%.3f", v)
}
