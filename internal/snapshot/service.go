package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/defiprog/lenderstat/internal/report"
)

// Service stores generated report documents for audit history.
type Service struct {
	repo Repository
}

// NewService creates a snapshot Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Store persists the document under the entity slug for the given date.
// The entity is created on first use.
func (s *Service) Store(ctx context.Context, slug, name string, date time.Time, doc report.Document) error {
	entityID, err := s.repo.EnsureEntity(ctx, slug, name, "")
	if err != nil {
		return fmt.Errorf("ensuring entity: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling report document: %w", err)
	}

	if err := s.repo.Save(ctx, entityID, date, data); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Latest retrieves the most recent stored report for the entity.
func (s *Service) Latest(ctx context.Context, slug string) (*Snapshot, error) {
	return s.repo.GetLatest(ctx, slug)
}

// History retrieves recent stored reports, newest first.
func (s *Service) History(ctx context.Context, slug string, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, slug, limit)
}
