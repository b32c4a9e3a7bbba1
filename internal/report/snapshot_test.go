package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/defiprog/lenderstat/internal/classify"
	"github.com/defiprog/lenderstat/internal/domain"
	"github.com/defiprog/lenderstat/internal/merge"
	"github.com/defiprog/lenderstat/internal/source"
)

func buildExampleDocument(t *testing.T, now time.Time) Document {
	t.Helper()

	vaultDoc := source.VaultDocument{
		Address:           "0x70E6a36bb71549C78Cd9c9f660B0f67B13B3f772",
		Symbol:            "crvUSD",
		Chain:             "ethereum",
		Block:             19876543,
		PricePerShare:     "2.0",
		TotalSupplyShares: "150",
		TotalAssetsValue:  "300",
	}
	vault, err := vaultDoc.State()
	if err != nil {
		t.Fatalf("vault state: %v", err)
	}

	inputs := merge.DefaultInputs(
		[]domain.SourceRecord{{Address: "0xAAA", Shares: "100"}},
		[]domain.SourceRecord{{Address: "0xaaa", Shares: "50"}},
		nil,
	)
	ledger, err := merge.Merge(inputs, vault, merge.NewExclusionSet(vaultDoc.ExcludedAddresses))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	return Build(ledger, merge.Summarize(ledger, vault), vaultDoc, vault, nil, now)
}

func TestBuildMatchesContract(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	doc := buildExampleDocument(t, now)

	if len(doc.Lenders) != 1 {
		t.Fatalf("lenders = %d, want 1", len(doc.Lenders))
	}
	lender := doc.Lenders[0]
	if lender.Rank != 1 {
		t.Errorf("rank = %d, want 1", lender.Rank)
	}
	if lender.Address != "0xAAA" {
		t.Errorf("address = %q, want 0xAAA", lender.Address)
	}
	if lender.TotalShares != "150.000000000000000000" {
		t.Errorf("total_shares = %q", lender.TotalShares)
	}
	if lender.TotalValue != "300.000000" {
		t.Errorf("total_value = %q", lender.TotalValue)
	}
	if lender.PctOfVault != "100.00" {
		t.Errorf("pct_of_vault = %q", lender.PctOfVault)
	}
	if len(lender.Sources) != 2 || lender.Sources[0] != "direct_holding" || lender.Sources[1] != "custodial_stake" {
		t.Errorf("sources = %v", lender.Sources)
	}
	if pos := lender.Positions["custodial_stake"]; pos.Shares != "50.000000000000000000" || pos.Value != "100.000000" {
		t.Errorf("custodial position = %+v", pos)
	}

	if doc.Summary.CoveragePct != "100.00" {
		t.Errorf("coverage_pct = %q", doc.Summary.CoveragePct)
	}
	if doc.Classification != nil {
		t.Error("classification present without call data")
	}
}

func TestDocumentJSONFieldNames(t *testing.T) {
	doc := buildExampleDocument(t, time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, key := range []string{
		`"generated_at"`, `"vault"`, `"summary"`, `"lenders"`,
		`"unique_lenders"`, `"multi_source_lenders"`, `"total_tracked_shares"`,
		`"total_tracked_value"`, `"coverage_pct"`, `"by_source"`,
		`"rank"`, `"pct_of_vault"`, `"positions"`, `"price_per_share"`,
	} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("output JSON missing key %s", key)
		}
	}
}

func TestBuildIdempotentUpToTimestamp(t *testing.T) {
	first := buildExampleDocument(t, time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))
	second := buildExampleDocument(t, time.Date(2025, 11, 4, 9, 30, 0, 0, time.UTC))

	first.GeneratedAt = time.Time{}
	second.GeneratedAt = time.Time{}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("documents differ beyond generated_at for identical inputs")
	}
}

func TestBuildClassificationAppendix(t *testing.T) {
	now := time.Now()
	vaultDoc := source.VaultDocument{PricePerShare: "1", TotalSupplyShares: "1", TotalAssetsValue: "1"}
	vault, err := vaultDoc.State()
	if err != nil {
		t.Fatalf("vault state: %v", err)
	}

	classified := classify.ClassifyAll([]classify.CallRecord{
		{Selector: "0x6e553f65", LogCount: 2},
		{Selector: "0xffffffff", LogCount: 1},
	})
	doc := Build(nil, merge.Summarize(nil, vault), vaultDoc, vault, classified, now)

	if doc.Classification == nil {
		t.Fatal("classification appendix missing")
	}
	if doc.Classification.Standard != 1 || doc.Classification.Unknown != 1 {
		t.Errorf("classification = %+v", doc.Classification)
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	doc := buildExampleDocument(t, time.Now())

	if err := WriteJSON(doc, path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Summary.UniqueLenders != 1 {
		t.Errorf("decoded unique_lenders = %d", decoded.Summary.UniqueLenders)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries after write, want 1", len(entries))
	}
}

func TestRenderMarkdown(t *testing.T) {
	doc := buildExampleDocument(t, time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))
	md := RenderMarkdown(doc, 10)

	for _, want := range []string{
		"# Lender Exposure Report",
		"| Unique lenders | 1 |",
		"| 1 | `0xAAA` | 150.000000000000000000 | 300.000000 | 100.00 | direct_holding, custodial_stake |",
		"| Direct holding | 1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestPrintSummaryTopN(t *testing.T) {
	doc := buildExampleDocument(t, time.Now())
	doc.Lenders = append(doc.Lenders, LenderDoc{Rank: 2, Address: "0xBBB", TotalValue: "1.000000", PctOfVault: "0.50"})

	var buf bytes.Buffer
	PrintSummary(&buf, doc, 1)
	out := buf.String()

	if !strings.Contains(out, "0xAAA") {
		t.Error("summary missing top lender")
	}
	if strings.Contains(out, "0xBBB") {
		t.Error("summary shows lender beyond top-N")
	}
	if !strings.Contains(out, "... and 1 more") {
		t.Error("summary missing truncation note")
	}
}
