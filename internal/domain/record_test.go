package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCategoriesOrder(t *testing.T) {
	cats := Categories()
	if len(cats) != 3 {
		t.Fatalf("Categories() has %d entries, want 3", len(cats))
	}
	want := []SourceCategory{SourceDirectHolding, SourceCustodialStake, SourceDirectSecondaryStake}
	for i, c := range cats {
		if c != want[i] {
			t.Errorf("Categories()[%d] = %s, want %s", i, c, want[i])
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := SourceCustodialStake.Label(); got != "Custodial stake" {
		t.Errorf("Label() = %q", got)
	}
	if got := SourceCategory("something_else").Label(); got != "something_else" {
		t.Errorf("unknown category Label() = %q, want raw value", got)
	}
}

func TestLenderRecordSourceQueries(t *testing.T) {
	rec := &LenderRecord{
		Positions: map[SourceCategory]Position{
			SourceDirectHolding: {Shares: decimal.NewFromInt(1)},
		},
		Sources: []SourceCategory{SourceDirectHolding},
	}

	if !rec.HasSource(SourceDirectHolding) {
		t.Error("HasSource(direct_holding) = false")
	}
	if rec.HasSource(SourceCustodialStake) {
		t.Error("HasSource(custodial_stake) = true")
	}
	if rec.MultiSource() {
		t.Error("MultiSource() = true with one source")
	}

	rec.Positions[SourceCustodialStake] = Position{Shares: decimal.NewFromInt(2)}
	rec.Sources = append(rec.Sources, SourceCustodialStake)
	if !rec.MultiSource() {
		t.Error("MultiSource() = false with two sources")
	}
}
