package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// HistoryService exposes past sync reports.
type HistoryService interface {
	// Recent returns up to limit reports, newest first.
	Recent(ctx context.Context, limit int) ([]domain.SyncReport, error)

	// Get returns one report by run ID.
	Get(ctx context.Context, runID string) (*domain.SyncReport, error)
}
