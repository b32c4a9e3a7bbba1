package classify

import "testing"

func TestClassifyKnownStandard(t *testing.T) {
	c := Classify(CallRecord{TxHash: "0x1", Selector: "0x6e553f65", LogCount: 4})
	if c.Category != CategoryStandard {
		t.Errorf("Category = %s, want standard", c.Category)
	}
	if c.Label != "deposit" {
		t.Errorf("Label = %q, want deposit", c.Label)
	}
	if c.Mismatch {
		t.Error("Mismatch = true for standard call with few logs")
	}
}

func TestClassifyKnownLeverage(t *testing.T) {
	c := Classify(CallRecord{TxHash: "0x2", Selector: "0x1c2d79a3", LogCount: 17})
	if c.Category != CategoryLeverage {
		t.Errorf("Category = %s, want leverage", c.Category)
	}
	if !c.LeverageSignal {
		t.Error("LeverageSignal = false with 17 logs")
	}
	if c.Mismatch {
		t.Error("Mismatch = true when table and heuristic agree")
	}
}

func TestClassifySelectorCaseInsensitive(t *testing.T) {
	c := Classify(CallRecord{Selector: "0x6E553F65", LogCount: 2})
	if c.Category != CategoryStandard {
		t.Errorf("Category = %s for uppercase selector, want standard", c.Category)
	}
}

func TestClassifyTableWinsOverHeuristic(t *testing.T) {
	// Standard deposit emitting many logs: heuristic says leverage,
	// table classification stands and the mismatch is flagged.
	c := Classify(CallRecord{TxHash: "0x3", Selector: "0xb460af94", LogCount: 15})
	if c.Category != CategoryStandard {
		t.Errorf("Category = %s, want standard (table wins)", c.Category)
	}
	if !c.Mismatch {
		t.Error("Mismatch = false, want true")
	}

	// Leverage call with few logs is also a mismatch.
	c = Classify(CallRecord{TxHash: "0x4", Selector: "0xf71f7a25", LogCount: 3})
	if c.Category != CategoryLeverage {
		t.Errorf("Category = %s, want leverage", c.Category)
	}
	if !c.Mismatch {
		t.Error("Mismatch = false for quiet leverage call, want true")
	}
}

func TestClassifyUnknownFallback(t *testing.T) {
	c := Classify(CallRecord{TxHash: "0x5", Selector: "0xdeadbeef", LogCount: 50})
	if c.Category != CategoryUnknown {
		t.Errorf("Category = %s, want unknown", c.Category)
	}
	if c.Label != UnknownLabel {
		t.Errorf("Label = %q, want %q", c.Label, UnknownLabel)
	}
	// No heuristic reclassification for unknown selectors.
	if c.Mismatch {
		t.Error("Mismatch = true for unknown selector")
	}
}

func TestSummarize(t *testing.T) {
	classified := ClassifyAll([]CallRecord{
		{Selector: "0x6e553f65", LogCount: 3},
		{Selector: "0x6e553f65", LogCount: 20}, // mismatch
		{Selector: "0x1c2d79a3", LogCount: 14},
		{Selector: "0xnotatall", LogCount: 1},
	})

	b := Summarize(classified)
	if b.Standard != 2 {
		t.Errorf("Standard = %d, want 2", b.Standard)
	}
	if b.Leverage != 1 {
		t.Errorf("Leverage = %d, want 1", b.Leverage)
	}
	if b.Unknown != 1 {
		t.Errorf("Unknown = %d, want 1", b.Unknown)
	}
	if b.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1", b.Mismatches)
	}
}
