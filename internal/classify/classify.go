package classify

import (
	"log/slog"
	"strings"
)

// Category is the classification assigned to an on-chain call.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryLeverage Category = "leverage"
	CategoryUnknown  Category = "unknown"
)

// UnknownLabel is assigned when a selector is not in the lookup table.
// No heuristic is applied to unknown selectors.
const UnknownLabel = "UNKNOWN"

// leverageLogThreshold: calls emitting more than this many logs are treated
// as a corroborating signal for leverage activity.
const leverageLogThreshold = 10

// CallRecord is one observed on-chain function call.
type CallRecord struct {
	TxHash        string `json:"tx_hash"`
	Selector      string `json:"selector"`
	LogCount      int    `json:"log_count"`
	TransferCount int    `json:"transfer_count"`
}

// Classification is the classifier's verdict for one call.
type Classification struct {
	CallRecord
	Category Category
	Label    string
	// LeverageSignal records whether the log-count heuristic fired.
	LeverageSignal bool
	// Mismatch is set when the heuristic disagrees with the table
	// classification. The table wins; a mismatch is a warning, not an error.
	Mismatch bool
}

type selectorEntry struct {
	label    string
	category Category
}

// selectorTable maps the function selectors observed during the
// investigation to human labels. Selectors outside the table stay UNKNOWN.
var selectorTable = map[string]selectorEntry{
	"0x6e553f65": {label: "deposit", category: CategoryStandard},
	"0xb460af94": {label: "withdraw", category: CategoryStandard},
	"0xba087652": {label: "redeem", category: CategoryStandard},
	"0x1c2d79a3": {label: "leverageDeposit", category: CategoryLeverage},
	"0xf71f7a25": {label: "closeLeveragedPosition", category: CategoryLeverage},
}

// Classify assigns a category to one call record.
func Classify(rec CallRecord) Classification {
	signal := rec.LogCount > leverageLogThreshold

	entry, ok := selectorTable[strings.ToLower(rec.Selector)]
	if !ok {
		return Classification{
			CallRecord:     rec,
			Category:       CategoryUnknown,
			Label:          UnknownLabel,
			LeverageSignal: signal,
		}
	}

	return Classification{
		CallRecord:     rec,
		Category:       entry.category,
		Label:          entry.label,
		LeverageSignal: signal,
		Mismatch:       signal != (entry.category == CategoryLeverage),
	}
}

// ClassifyAll classifies every record, logging a warning per mismatch.
func ClassifyAll(records []CallRecord) []Classification {
	out := make([]Classification, 0, len(records))
	for _, rec := range records {
		c := Classify(rec)
		if c.Mismatch {
			slog.Warn("selector table disagrees with log-count heuristic, table wins",
				"tx", c.TxHash, "selector", c.Selector, "label", c.Label,
				"category", c.Category, "logs", c.LogCount)
		}
		out = append(out, c)
	}
	return out
}

// Breakdown counts classifications per category.
type Breakdown struct {
	Standard   int
	Leverage   int
	Unknown    int
	Mismatches int
}

// Summarize tallies a classified call list.
func Summarize(classified []Classification) Breakdown {
	var b Breakdown
	for _, c := range classified {
		switch c.Category {
		case CategoryStandard:
			b.Standard++
		case CategoryLeverage:
			b.Leverage++
		default:
			b.Unknown++
		}
		if c.Mismatch {
			b.Mismatches++
		}
	}
	return b
}
