package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SyncOrchestrator runs sync passes from the document store into the index.
type SyncOrchestrator interface {
	// Run executes one sync pass. It returns an error only when the pass was
	// halted by a run-fatal error; the report is returned in both cases.
	Run(ctx context.Context) (*domain.SyncReport, error)

	// Status returns progress of the running pass, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync pass.
type SyncStatus struct {
	// RunID identifies the pass. Empty when idle.
	RunID string `json:"run_id"`

	// Running indicates if a pass is currently in progress.
	Running bool `json:"running"`

	// Eligible is the number of documents selected for processing.
	Eligible int `json:"eligible"`

	// Indexed is the count of documents indexed so far.
	Indexed int `json:"indexed"`

	// Failed is the number of documents that failed so far.
	Failed int `json:"failed"`
}

// Processed returns the number of documents finished either way.
func (s *SyncStatus) Processed() int {
	return s.Indexed + s.Failed
}
