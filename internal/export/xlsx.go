package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/defiprog/lenderstat/internal/domain"
	"github.com/defiprog/lenderstat/internal/report"
)

const (
	lendersSheet = "LENDERS"
	summarySheet = "SUMMARY"
)

// XLSXWriter writes the lender ledger to an Excel workbook with a LENDERS
// sheet (the full ranked table) and a SUMMARY sheet (aggregate figures).
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer targeting the given file path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write builds and saves the workbook.
func (w *XLSXWriter) Write(doc report.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", lendersSheet); err != nil {
		return fmt.Errorf("naming lenders sheet: %w", err)
	}
	if err := writeLenders(f, doc); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeSummary(f, doc); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", w.path, err)
	}
	return nil
}

func writeLenders(f *excelize.File, doc report.Document) error {
	header := []any{"Rank", "Address", "Total shares", "Total value", "% of vault", "Sources"}
	for _, cat := range domain.Categories() {
		header = append(header, cat.Label()+" shares", cat.Label()+" value")
	}
	if err := f.SetSheetRow(lendersSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing lenders header: %w", err)
	}

	for i, lender := range doc.Lenders {
		row := []any{
			lender.Rank,
			lender.Address,
			lender.TotalShares,
			lender.TotalValue,
			lender.PctOfVault,
			strings.Join(lender.Sources, ", "),
		}
		for _, cat := range domain.Categories() {
			pos, ok := lender.Positions[string(cat)]
			if !ok {
				row = append(row, "", "")
				continue
			}
			row = append(row, pos.Shares, pos.Value)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(lendersSheet, cell, &row); err != nil {
			return fmt.Errorf("writing lender row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(lendersSheet, "B", "B", 44); err != nil {
		return fmt.Errorf("sizing address column: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, doc report.Document) error {
	rows := [][]any{
		{"Generated at", doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Vault", doc.Vault.Address},
		{"Symbol", doc.Vault.Symbol},
		{"Block", doc.Vault.Block},
		{"Total supply (shares)", doc.Vault.TotalSupplyShares},
		{"Total assets", doc.Vault.TotalAssetsValue},
		{"Price per share", doc.Vault.PricePerShare},
		{"Unique lenders", doc.Summary.UniqueLenders},
		{"Multi-source lenders", doc.Summary.MultiSourceLenders},
		{"Total tracked shares", doc.Summary.TotalTrackedShares},
		{"Total tracked value", doc.Summary.TotalTrackedValue},
		{"Coverage %", doc.Summary.CoveragePct},
	}
	for _, cat := range domain.Categories() {
		stats, ok := doc.Summary.BySource[string(cat)]
		if !ok {
			continue
		}
		rows = append(rows,
			[]any{cat.Label() + " lenders", stats.Count},
			[]any{cat.Label() + " value", stats.TotalValue},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing summary cell %d: %w", i+1, err)
		}
		r := row
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("sizing summary column: %w", err)
	}
	return nil
}
