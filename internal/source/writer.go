package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/defiprog/lenderstat/internal/domain"
)

// Writer persists fetched datasets into the data directory layout that
// Loader reads, so `fetch` and `report` compose.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// WriteAll writes every dataset file. Calls are written only when present.
func (w *Writer) WriteAll(ds Datasets) error {
	if err := w.writeJSON(HoldersFile, emptyIfNil(ds.Holders)); err != nil {
		return err
	}
	if err := w.writeJSON(GaugeDepositorsFile, emptyIfNil(ds.GaugeDepositors)); err != nil {
		return err
	}
	if err := w.writeJSON(PoolDepositorsFile, emptyIfNil(ds.PoolDepositors)); err != nil {
		return err
	}
	if err := w.writeJSON(VaultFile, ds.Vault); err != nil {
		return err
	}
	if ds.Calls != nil {
		if err := w.writeJSON(CallsFile, ds.Calls); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// emptyIfNil keeps empty datasets as [] rather than null on disk.
func emptyIfNil(records []domain.SourceRecord) []domain.SourceRecord {
	if records == nil {
		return []domain.SourceRecord{}
	}
	return records
}
