package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/defiprog/lenderstat/internal/classify"
	"github.com/defiprog/lenderstat/internal/domain"
)

// Fixed dataset file names within the data directory.
const (
	HoldersFile         = "holders.json"
	GaugeDepositorsFile = "gauge_depositors.json"
	PoolDepositorsFile  = "pool_depositors.json"
	VaultFile           = "vault.json"
	CallsFile           = "calls.json"
)

// VaultDocument mirrors vault.json: the reference snapshot plus the
// infrastructure addresses excluded from the direct-holding source.
type VaultDocument struct {
	Address           string   `json:"address"`
	Symbol            string   `json:"symbol"`
	Chain             string   `json:"chain"`
	Block             uint64   `json:"block"`
	PricePerShare     string   `json:"price_per_share"`
	TotalSupplyShares string   `json:"total_supply_shares"`
	TotalAssetsValue  string   `json:"total_assets_value"`
	USDQuote          string   `json:"usd_quote,omitempty"`
	ExcludedAddresses []string `json:"excluded_addresses"`
}

// State validates the document and converts it to a domain VaultState.
// A missing scalar is a MissingReferenceDataError; an unparseable one is a
// MalformedInputError.
func (d VaultDocument) State() (domain.VaultState, error) {
	state := domain.VaultState{
		Address: d.Address,
		Symbol:  d.Symbol,
		Chain:   d.Chain,
		Block:   d.Block,
	}

	for _, s := range []struct {
		field string
		raw   string
	}{
		{"price_per_share", d.PricePerShare},
		{"total_supply_shares", d.TotalSupplyShares},
		{"total_assets_value", d.TotalAssetsValue},
	} {
		if s.raw == "" {
			return domain.VaultState{}, &domain.MissingReferenceDataError{Field: s.field}
		}
		v, err := domain.ParseAmount(s.raw)
		if err != nil {
			return domain.VaultState{}, &domain.MalformedInputError{Source: "vault", Field: s.field, Value: s.raw}
		}
		switch s.field {
		case "price_per_share":
			state.PricePerShare = v
		case "total_supply_shares":
			state.TotalSupplyShares = v
		case "total_assets_value":
			state.TotalAssetsValue = v
		}
	}

	if d.USDQuote != "" {
		q, err := domain.ParseAmount(d.USDQuote)
		if err != nil {
			return domain.VaultState{}, &domain.MalformedInputError{Source: "vault", Field: "usd_quote", Value: d.USDQuote}
		}
		state.USDQuote = &q
	}

	return state, nil
}

// Datasets holds every input of one report run, fully materialized.
type Datasets struct {
	Holders         []domain.SourceRecord
	GaugeDepositors []domain.SourceRecord
	PoolDepositors  []domain.SourceRecord
	Vault           VaultDocument
	// Calls is nil when calls.json is absent; classification is optional.
	Calls []classify.CallRecord
}

// Loader reads datasets from a fixed-layout data directory.
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads all datasets. Any unreadable required file is fatal; calls.json
// is optional.
func (l *Loader) Load() (Datasets, error) {
	var ds Datasets

	if err := l.readJSON(HoldersFile, &ds.Holders); err != nil {
		return Datasets{}, err
	}
	if err := l.readJSON(GaugeDepositorsFile, &ds.GaugeDepositors); err != nil {
		return Datasets{}, err
	}
	if err := l.readJSON(PoolDepositorsFile, &ds.PoolDepositors); err != nil {
		return Datasets{}, err
	}
	if err := l.readJSON(VaultFile, &ds.Vault); err != nil {
		return Datasets{}, err
	}

	calls, err := l.LoadCalls()
	if err != nil {
		return Datasets{}, err
	}
	ds.Calls = calls

	return ds, nil
}

// LoadCalls reads calls.json if present; absence is not an error.
func (l *Loader) LoadCalls() ([]classify.CallRecord, error) {
	var calls []classify.CallRecord
	err := l.readJSON(CallsFile, &calls)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return calls, nil
}

func (l *Loader) readJSON(name string, dest any) error {
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
