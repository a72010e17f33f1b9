package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// RunStore persists sync reports for later inspection.
type RunStore interface {
	// Save stores a finished (or aborted) sync report.
	Save(ctx context.Context, report domain.SyncReport) error

	// Get retrieves a report by run ID.
	// Returns domain.ErrNotFound if no such run exists.
	Get(ctx context.Context, runID string) (*domain.SyncReport, error)

	// List returns the most recent reports, newest first.
	List(ctx context.Context, limit int) ([]domain.SyncReport, error)

	// Close releases resources.
	Close() error
}

// RunLock guards against two sync passes running at once.
type RunLock interface {
	// TryLock acquires the lock without blocking.
	// Returns false if another process holds it.
	TryLock() (bool, error)

	// Unlock releases the lock.
	Unlock() error
}
