package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.SyncReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.SyncReport),
	}
}

// Save stores or replaces a report.
func (s *RunStore) Save(_ context.Context, report domain.SyncReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.Failed = append([]domain.DocumentFailure(nil), report.Failed...)
	s.runs[report.RunID] = report
	return nil
}

// Get retrieves a report by run ID.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// List returns up to limit reports ordered by start time, newest first.
// A non-positive limit returns every report.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]domain.SyncReport, 0, len(s.runs))
	for _, report := range s.runs {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].StartedAt.Equal(reports[j].StartedAt) {
			return reports[i].RunID > reports[j].RunID
		}
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})

	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Close is a no-op.
func (s *RunStore) Close() error {
	return nil
}
