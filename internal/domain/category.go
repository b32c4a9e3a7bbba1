package domain

// SourceCategory identifies where a lender position originates.
type SourceCategory string

const (
	// SourceDirectHolding covers vault shares held directly in a wallet.
	SourceDirectHolding SourceCategory = "direct_holding"
	// SourceCustodialStake covers shares deposited through the reward-tracking
	// intermediary, which holds them on the user's behalf.
	SourceCustodialStake SourceCategory = "custodial_stake"
	// SourceDirectSecondaryStake covers shares staked into the secondary pool
	// directly, bypassing the intermediary.
	SourceDirectSecondaryStake SourceCategory = "direct_secondary_stake"
)

// Categories returns all source categories in canonical merge order:
// direct holdings first, then custodial stakes, then direct secondary stakes.
func Categories() []SourceCategory {
	return []SourceCategory{
		SourceDirectHolding,
		SourceCustodialStake,
		SourceDirectSecondaryStake,
	}
}

// Label returns a human-readable name for report output.
func (c SourceCategory) Label() string {
	switch c {
	case SourceDirectHolding:
		return "Direct holding"
	case SourceCustodialStake:
		return "Custodial stake"
	case SourceDirectSecondaryStake:
		return "Direct secondary stake"
	default:
		return string(c)
	}
}
