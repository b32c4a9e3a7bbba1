package merge

import (
	"sort"

	"github.com/samber/lo"

	"github.com/defiprog/lenderstat/internal/domain"
)

// SourceInput is one ordered raw dataset feeding the merge. The category is
// implicit per dataset: every record in it contributes to that category.
type SourceInput struct {
	Category domain.SourceCategory
	// ApplyExclusions marks inputs subject to the infrastructure-address
	// exclusion set. Only direct holdings use it in this domain: the
	// intermediary contracts hold vault shares on users' behalf, and those
	// balances are already attributed per user by the stake datasets.
	ApplyExclusions bool
	Records         []domain.SourceRecord
}

// ExclusionSet is a case-insensitive set of excluded addresses.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds an ExclusionSet from raw address strings.
func NewExclusionSet(addresses []string) ExclusionSet {
	set := make(ExclusionSet, len(addresses))
	for _, a := range addresses {
		set[domain.AddressKey(a)] = struct{}{}
	}
	return set
}

// Contains reports whether the address is excluded, ignoring case.
func (s ExclusionSet) Contains(address string) bool {
	_, ok := s[domain.AddressKey(address)]
	return ok
}

// Ledger is the merged output: one record per unique lender, sorted by
// total value descending, ranked 1..N.
type Ledger []*domain.LenderRecord

// Merge combines the input datasets into a deduplicated, summed, ranked
// ledger. It is a pure batch transform: ingest, accumulate, derive, sort,
// rank. A record with an unparseable shares amount aborts the whole merge.
func Merge(inputs []SourceInput, vault domain.VaultState, excluded ExclusionSet) (Ledger, error) {
	byKey := make(map[string]*domain.LenderRecord)
	var order Ledger

	for _, in := range inputs {
		for _, raw := range in.Records {
			shares, err := domain.ParseAmount(raw.Shares)
			if err != nil {
				return nil, &domain.MalformedInputError{
					Source:  string(in.Category),
					Address: raw.Address,
					Field:   "shares",
					Value:   raw.Shares,
				}
			}
			// Dust and closed positions never become records.
			if !shares.IsPositive() {
				continue
			}
			if in.ApplyExclusions && excluded.Contains(raw.Address) {
				continue
			}

			key := domain.AddressKey(raw.Address)
			rec, ok := byKey[key]
			if !ok {
				rec = &domain.LenderRecord{
					Address:   raw.Address,
					Positions: make(map[domain.SourceCategory]domain.Position),
				}
				byKey[key] = rec
				order = append(order, rec)
			}

			value := shares.Mul(vault.PricePerShare)

			// Each category normally appears once per address; if a dataset
			// repeats an address, its amounts accumulate so totals stay exact.
			pos := rec.Positions[in.Category]
			pos.Shares = pos.Shares.Add(shares)
			pos.Value = pos.Value.Add(value)
			rec.Positions[in.Category] = pos

			rec.TotalShares = rec.TotalShares.Add(shares)
			rec.TotalValue = rec.TotalValue.Add(value)
			if !lo.Contains(rec.Sources, in.Category) {
				rec.Sources = append(rec.Sources, in.Category)
			}
		}
	}

	for _, rec := range order {
		rec.PctOfVault = domain.Percentage(rec.TotalShares, vault.TotalSupplyShares)
	}

	// Stable: equal values keep first-seen order.
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].TotalValue.GreaterThan(order[j].TotalValue)
	})
	for i, rec := range order {
		rec.Rank = i + 1
	}

	return order, nil
}

// DefaultInputs pairs the three canonical datasets with their categories in
// merge order. Exclusions apply to direct holdings only.
func DefaultInputs(holders, custodial, secondary []domain.SourceRecord) []SourceInput {
	return []SourceInput{
		{Category: domain.SourceDirectHolding, ApplyExclusions: true, Records: holders},
		{Category: domain.SourceCustodialStake, Records: custodial},
		{Category: domain.SourceDirectSecondaryStake, Records: secondary},
	}
}
