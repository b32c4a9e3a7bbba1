package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/defiprog/lenderstat/internal/classify"
	"github.com/defiprog/lenderstat/internal/domain"
	"github.com/defiprog/lenderstat/internal/merge"
	"github.com/defiprog/lenderstat/internal/source"
)

// Document is the machine-readable report snapshot. All amounts are fixed-
// precision strings: 18 decimals for shares, 6 for values, 2 for percentages.
type Document struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	Vault          VaultDoc           `json:"vault"`
	Summary        SummaryDoc         `json:"summary"`
	Lenders        []LenderDoc        `json:"lenders"`
	Classification *ClassificationDoc `json:"classification,omitempty"`
}

// VaultDoc echoes the reference snapshot the figures are derived from.
type VaultDoc struct {
	Address           string `json:"address,omitempty"`
	Symbol            string `json:"symbol,omitempty"`
	Chain             string `json:"chain,omitempty"`
	Block             uint64 `json:"block,omitempty"`
	TotalSupplyShares string `json:"total_supply_shares"`
	TotalAssetsValue  string `json:"total_assets_value"`
	PricePerShare     string `json:"price_per_share"`
	USDQuote          string `json:"usd_quote,omitempty"`
}

// SummaryDoc holds the aggregate figures.
type SummaryDoc struct {
	UniqueLenders      int                       `json:"unique_lenders"`
	MultiSourceLenders int                       `json:"multi_source_lenders"`
	TotalTrackedShares string                    `json:"total_tracked_shares"`
	TotalTrackedValue  string                    `json:"total_tracked_value"`
	CoveragePct        string                    `json:"coverage_pct"`
	CoverageFlag       bool                      `json:"coverage_flag,omitempty"`
	BySource           map[string]SourceStatsDoc `json:"by_source"`
}

// SourceStatsDoc is the per-category participation entry.
type SourceStatsDoc struct {
	Count      int    `json:"count"`
	TotalValue string `json:"total_value"`
}

// LenderDoc is one ranked ledger entry.
type LenderDoc struct {
	Rank        int                    `json:"rank"`
	Address     string                 `json:"address"`
	TotalShares string                 `json:"total_shares"`
	TotalValue  string                 `json:"total_value"`
	PctOfVault  string                 `json:"pct_of_vault"`
	Sources     []string               `json:"sources"`
	Positions   map[string]PositionDoc `json:"positions"`
}

// PositionDoc is one per-category position of a lender.
type PositionDoc struct {
	Shares string `json:"shares"`
	Value  string `json:"value"`
}

// ClassificationDoc is the optional transaction-classification appendix.
type ClassificationDoc struct {
	Standard   int `json:"standard"`
	Leverage   int `json:"leverage"`
	Unknown    int `json:"unknown"`
	Mismatches int `json:"mismatches"`
}

// Build assembles the output document from merge results. classified may be
// nil when no call dataset was supplied.
func Build(ledger merge.Ledger, summary merge.Summary, vaultDoc source.VaultDocument, vault domain.VaultState, classified []classify.Classification, now time.Time) Document {
	doc := Document{
		GeneratedAt: now.UTC(),
		Vault: VaultDoc{
			Address:           vaultDoc.Address,
			Symbol:            vaultDoc.Symbol,
			Chain:             vaultDoc.Chain,
			Block:             vaultDoc.Block,
			TotalSupplyShares: domain.FormatShares(vault.TotalSupplyShares),
			TotalAssetsValue:  domain.FormatValue(vault.TotalAssetsValue),
			PricePerShare:     vault.PricePerShare.String(),
			USDQuote:          vaultDoc.USDQuote,
		},
		Summary: SummaryDoc{
			UniqueLenders:      summary.UniqueLenders,
			MultiSourceLenders: summary.MultiSourceLenders,
			TotalTrackedShares: domain.FormatShares(summary.TotalTrackedShares),
			TotalTrackedValue:  domain.FormatValue(summary.TotalTrackedValue),
			CoveragePct:        domain.FormatPct(summary.CoveragePct),
			CoverageFlag:       summary.CoverageFlagged,
			BySource:           make(map[string]SourceStatsDoc, len(summary.BySource)),
		},
		Lenders: make([]LenderDoc, 0, len(ledger)),
	}

	for cat, stats := range summary.BySource {
		doc.Summary.BySource[string(cat)] = SourceStatsDoc{
			Count:      stats.Count,
			TotalValue: domain.FormatValue(stats.TotalValue),
		}
	}

	for _, rec := range ledger {
		lender := LenderDoc{
			Rank:        rec.Rank,
			Address:     rec.Address,
			TotalShares: domain.FormatShares(rec.TotalShares),
			TotalValue:  domain.FormatValue(rec.TotalValue),
			PctOfVault:  domain.FormatPct(rec.PctOfVault),
			Sources:     make([]string, 0, len(rec.Sources)),
			Positions:   make(map[string]PositionDoc, len(rec.Positions)),
		}
		for _, cat := range rec.Sources {
			lender.Sources = append(lender.Sources, string(cat))
		}
		for cat, pos := range rec.Positions {
			lender.Positions[string(cat)] = PositionDoc{
				Shares: domain.FormatShares(pos.Shares),
				Value:  domain.FormatValue(pos.Value),
			}
		}
		doc.Lenders = append(doc.Lenders, lender)
	}

	if classified != nil {
		b := classify.Summarize(classified)
		doc.Classification = &ClassificationDoc{
			Standard:   b.Standard,
			Leverage:   b.Leverage,
			Unknown:    b.Unknown,
			Mismatches: b.Mismatches,
		}
	}

	return doc
}

// WriteJSON writes the document atomically (temp file plus rename).
func WriteJSON(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lenderstat-*.json")
	if err != nil {
		return fmt.Errorf("creating temp report file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("moving report into place: %w", err)
	}
	return nil
}
