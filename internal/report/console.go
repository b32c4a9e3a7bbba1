package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// PrintSummary writes a human-readable console summary mirroring the top-N
// records. It carries no machine contract.
func PrintSummary(w io.Writer, doc Document, topN int) {
	fmt.Fprintf(w, "Lender exposure report — %s\n", doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	if doc.Vault.Address != "" {
		fmt.Fprintf(w, "Vault %s (%s) at block %d\n", doc.Vault.Address, doc.Vault.Symbol, doc.Vault.Block)
	}
	fmt.Fprintf(w, "Unique lenders: %d (%d multi-source)\n", doc.Summary.UniqueLenders, doc.Summary.MultiSourceLenders)
	fmt.Fprintf(w, "Tracked: %s shares, %s value, %s%% coverage\n",
		doc.Summary.TotalTrackedShares, doc.Summary.TotalTrackedValue, doc.Summary.CoveragePct)
	if doc.Summary.CoverageFlag {
		fmt.Fprintln(w, "WARNING: coverage above 100%, reference snapshot may be stale")
	}
	fmt.Fprintln(w)

	limit := len(doc.Lenders)
	if topN > 0 && topN < limit {
		limit = topN
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tADDRESS\tVALUE\t% VAULT\tSOURCES")
	for _, lender := range doc.Lenders[:limit] {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			lender.Rank, lender.Address, lender.TotalValue, lender.PctOfVault,
			strings.Join(lender.Sources, ","))
	}
	tw.Flush()

	if limit < len(doc.Lenders) {
		fmt.Fprintf(w, "... and %d more\n", len(doc.Lenders)-limit)
	}
}
