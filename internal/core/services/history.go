package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// defaultHistoryLimit is used when a caller passes a non-positive limit.
const defaultHistoryLimit = 20

// HistoryService reads past sync reports from the run store.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// Recent returns up to limit reports, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.SyncReport, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	reports, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return reports, nil
}

// Get returns one report by run ID.
func (s *HistoryService) Get(ctx context.Context, runID string) (*domain.SyncReport, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	report, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return report, nil
}
