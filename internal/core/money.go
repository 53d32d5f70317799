// Package core holds the domain types and money handling for envelope
// budgeting. Monetary amounts are exact decimals (github.com/shopspring/decimal)
// rounded to two places; balances are persisted as integer cents and no
// floating-point arithmetic is ever performed on them.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string into an exact amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted. A third decimal
// place is rounded half-up. Zero and negative values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ValidateAmount rejects amounts that are not positive or carry sub-cent
// precision.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() || d.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

// Cents returns the amount as integer cents, the storage representation.
// Amounts must already be validated to two decimal places.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents converts the storage representation back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatAmount renders an amount with exactly two decimal places for
// notification texts and reports.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
