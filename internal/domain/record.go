package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SourceRecord is one raw entry from a source dataset: an address and a
// shares amount as a decimal string. The source category is implicit in
// which dataset the record came from.
type SourceRecord struct {
	Address string `json:"address"`
	Shares  string `json:"shares"`
}

// Position is an amount of vault shares held by an address within one
// source category, with its value in the reference unit. Immutable once
// recorded.
type Position struct {
	Shares decimal.Decimal
	Value  decimal.Decimal
}

// LenderRecord aggregates all positions of one lender across source
// categories. Identity is the case-insensitive address; Address preserves
// the casing of the first record seen.
type LenderRecord struct {
	Address     string
	Positions   map[SourceCategory]Position
	TotalShares decimal.Decimal
	TotalValue  decimal.Decimal
	// Sources lists categories with a present position, in first-seen order.
	Sources    []SourceCategory
	PctOfVault decimal.Decimal
	Rank       int
}

// HasSource reports whether the lender has a position in the given category.
func (r *LenderRecord) HasSource(c SourceCategory) bool {
	_, ok := r.Positions[c]
	return ok
}

// MultiSource reports whether the lender has positions in more than one category.
func (r *LenderRecord) MultiSource() bool {
	return len(r.Sources) > 1
}

// AddressKey returns the case-insensitive identity for an address string.
func AddressKey(address string) string {
	return strings.ToLower(address)
}

// VaultState is the reference snapshot of the vault used for share-to-value
// conversion and coverage computation.
type VaultState struct {
	Address           string
	Symbol            string
	Chain             string
	Block             uint64
	TotalSupplyShares decimal.Decimal
	TotalAssetsValue  decimal.Decimal
	PricePerShare     decimal.Decimal
	// USDQuote is an optional market quote for the reference asset, attached
	// for report context only. Never used in merge arithmetic.
	USDQuote *decimal.Decimal
}
