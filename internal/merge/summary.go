package merge

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/defiprog/lenderstat/internal/domain"
)

// coverageEpsilon is the rounding tolerance above 100% before coverage is
// flagged as suspicious (usually a stale reference snapshot).
var coverageEpsilon = decimal.RequireFromString("0.01")

// CategoryStats aggregates participation for one source category.
type CategoryStats struct {
	Count      int
	TotalValue decimal.Decimal
}

// Summary holds ledger-level aggregate statistics.
type Summary struct {
	UniqueLenders      int
	MultiSourceLenders int
	TotalTrackedShares decimal.Decimal
	TotalTrackedValue  decimal.Decimal
	CoveragePct        decimal.Decimal
	// CoverageFlagged is set when coverage exceeds 100% beyond rounding
	// tolerance. A flag, not an error: the merge output is still valid.
	CoverageFlagged bool
	BySource        map[domain.SourceCategory]CategoryStats
}

// Summarize derives aggregate statistics from a merged ledger.
func Summarize(ledger Ledger, vault domain.VaultState) Summary {
	totalShares := lo.Reduce(ledger, func(acc decimal.Decimal, r *domain.LenderRecord, _ int) decimal.Decimal {
		return acc.Add(r.TotalShares)
	}, decimal.Zero)
	totalValue := lo.Reduce(ledger, func(acc decimal.Decimal, r *domain.LenderRecord, _ int) decimal.Decimal {
		return acc.Add(r.TotalValue)
	}, decimal.Zero)

	bySource := make(map[domain.SourceCategory]CategoryStats)
	for _, rec := range ledger {
		for cat, pos := range rec.Positions {
			stats := bySource[cat]
			stats.Count++
			stats.TotalValue = stats.TotalValue.Add(pos.Value)
			bySource[cat] = stats
		}
	}

	coverage := domain.Percentage(totalShares, vault.TotalSupplyShares)

	return Summary{
		UniqueLenders: len(ledger),
		MultiSourceLenders: lo.CountBy(ledger, func(r *domain.LenderRecord) bool {
			return r.MultiSource()
		}),
		TotalTrackedShares: totalShares,
		TotalTrackedValue:  totalValue,
		CoveragePct:        coverage,
		CoverageFlagged:    coverage.GreaterThan(decimal.NewFromInt(100).Add(coverageEpsilon)),
		BySource:           bySource,
	}
}
