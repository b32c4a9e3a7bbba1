package domain

import (
	"github.com/shopspring/decimal"
)

// Display precisions. Internal arithmetic is never rounded; these apply only
// at the serialization boundary.
const (
	SharesPrecision = 18
	ValuePrecision  = 6
	PctPrecision    = 2
)

// ParseAmount parses a decimal amount string strictly. Empty or unparseable
// input is an error; ingestion must fail fast rather than understate totals.
func ParseAmount(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}

// SafeParse parses a string into a decimal, returning zero for invalid or
// empty input. Only used for optional metadata, never for position amounts.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatShares renders a share amount with 18 fixed decimals.
func FormatShares(d decimal.Decimal) string {
	return d.StringFixed(SharesPrecision)
}

// FormatValue renders a reference-unit value with 6 fixed decimals.
func FormatValue(d decimal.Decimal) string {
	return d.StringFixed(ValuePrecision)
}

// FormatPct renders a percentage with 2 fixed decimals.
func FormatPct(d decimal.Decimal) string {
	return d.StringFixed(PctPrecision)
}

// Percentage computes part/whole × 100, returning zero when whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
