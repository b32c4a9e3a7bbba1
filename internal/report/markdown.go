package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/defiprog/lenderstat/internal/domain"
)

// RenderMarkdown renders the governance report as a Markdown string.
// topN limits the lender table; 0 means all.
func RenderMarkdown(doc Document, topN int) string {
	var sb strings.Builder

	sb.WriteString("# Lender Exposure Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", doc.GeneratedAt.Format(time.RFC3339)))

	if doc.Vault.Address != "" {
		sb.WriteString(fmt.Sprintf("Vault: `%s`", doc.Vault.Address))
		if doc.Vault.Symbol != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", doc.Vault.Symbol))
		}
		if doc.Vault.Block > 0 {
			sb.WriteString(fmt.Sprintf(", block %d", doc.Vault.Block))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Vault\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total supply (shares) | %s |\n", doc.Vault.TotalSupplyShares))
	sb.WriteString(fmt.Sprintf("| Total assets | %s |\n", doc.Vault.TotalAssetsValue))
	sb.WriteString(fmt.Sprintf("| Price per share | %s |\n", doc.Vault.PricePerShare))
	if doc.Vault.USDQuote != "" {
		sb.WriteString(fmt.Sprintf("| Reference asset USD quote | %s |\n", doc.Vault.USDQuote))
	}
	sb.WriteString("\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Unique lenders | %d |\n", doc.Summary.UniqueLenders))
	sb.WriteString(fmt.Sprintf("| Multi-source lenders | %d |\n", doc.Summary.MultiSourceLenders))
	sb.WriteString(fmt.Sprintf("| Total tracked shares | %s |\n", doc.Summary.TotalTrackedShares))
	sb.WriteString(fmt.Sprintf("| Total tracked value | %s |\n", doc.Summary.TotalTrackedValue))
	sb.WriteString(fmt.Sprintf("| Coverage | %s%% |\n", doc.Summary.CoveragePct))
	sb.WriteString("\n")
	if doc.Summary.CoverageFlag {
		sb.WriteString("**Coverage exceeds 100%.** The reference snapshot may be stale relative to the datasets.\n\n")
	}

	sb.WriteString("### By source\n\n")
	sb.WriteString("| Source | Lenders | Total value |\n")
	sb.WriteString("|--------|---------|-------------|\n")
	for _, cat := range domain.Categories() {
		stats, ok := doc.Summary.BySource[string(cat)]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", cat.Label(), stats.Count, stats.TotalValue))
	}
	sb.WriteString("\n")

	limit := len(doc.Lenders)
	if topN > 0 && topN < limit {
		limit = topN
	}
	sb.WriteString(fmt.Sprintf("## Lenders (top %d of %d)\n\n", limit, len(doc.Lenders)))
	sb.WriteString("| Rank | Address | Shares | Value | % of vault | Sources |\n")
	sb.WriteString("|------|---------|--------|-------|------------|--------|\n")
	for _, lender := range doc.Lenders[:limit] {
		sb.WriteString(fmt.Sprintf("| %d | `%s` | %s | %s | %s | %s |\n",
			lender.Rank, lender.Address, lender.TotalShares, lender.TotalValue,
			lender.PctOfVault, strings.Join(lender.Sources, ", ")))
	}
	sb.WriteString("\n")

	if doc.Classification != nil {
		c := doc.Classification
		sb.WriteString("## Transaction classification\n\n")
		sb.WriteString("| Category | Calls |\n")
		sb.WriteString("|----------|-------|\n")
		sb.WriteString(fmt.Sprintf("| standard | %d |\n", c.Standard))
		sb.WriteString(fmt.Sprintf("| leverage | %d |\n", c.Leverage))
		sb.WriteString(fmt.Sprintf("| unknown | %d |\n", c.Unknown))
		sb.WriteString("\n")
		if c.Mismatches > 0 {
			sb.WriteString(fmt.Sprintf("%d call(s) where the log-count heuristic disagreed with the selector table.\n", c.Mismatches))
		}
	}

	return sb.String()
}

// WriteMarkdown renders and writes the governance report.
func WriteMarkdown(doc Document, topN int, path string) error {
	if err := os.WriteFile(path, []byte(RenderMarkdown(doc, topN)), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	return nil
}
