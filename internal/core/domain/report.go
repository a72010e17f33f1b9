package domain

import "time"

// FailureReason classifies why a single document was not indexed.
type FailureReason string

// Per-document failure reasons.
const (
	// ReasonFetchFailed means the content could not be downloaded.
	ReasonFetchFailed FailureReason = "fetch_failed"

	// ReasonExtractionFailed means the extraction service failed.
	ReasonExtractionFailed FailureReason = "extraction_failed"

	// ReasonEmptyText means extraction returned blank text.
	ReasonEmptyText FailureReason = "empty_text"

	// ReasonIndexWriteFailed means the upsert was rejected.
	ReasonIndexWriteFailed FailureReason = "index_write_failed"
)

// String returns the string representation.
func (r FailureReason) String() string {
	return string(r)
}

// IsValid returns true if the reason is recognised.
func (r FailureReason) IsValid() bool {
	switch r {
	case ReasonFetchFailed, ReasonExtractionFailed, ReasonEmptyText, ReasonIndexWriteFailed:
		return true
	default:
		return false
	}
}

// DocumentFailure is one failed document in a SyncReport.
type DocumentFailure struct {
	Name    string        `json:"name" yaml:"name"`
	Reason  FailureReason `json:"reason" yaml:"reason"`
	Message string        `json:"message" yaml:"message"`
}

// SyncReport aggregates the outcome of one sync pass.
// Failed is append-only while the pass runs.
type SyncReport struct {
	// RunID uniquely identifies the pass.
	RunID string `json:"run_id" yaml:"run_id"`

	// StoreType and Container identify what was synced.
	StoreType string `json:"store_type" yaml:"store_type"`
	Container string `json:"container" yaml:"container"`

	// Index is the target index name.
	Index string `json:"index" yaml:"index"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Listed counts every entry returned by the store listing.
	Listed int `json:"listed" yaml:"listed"`

	// Eligible counts entries with the supported extension.
	Eligible int `json:"eligible" yaml:"eligible"`

	// Indexed counts documents successfully upserted.
	Indexed int `json:"indexed" yaml:"indexed"`

	// Failed lists per-document failures in the order they were recorded.
	Failed []DocumentFailure `json:"failed" yaml:"failed"`

	// IndexTotal is the engine's document count after the pass, or -1 when
	// the count could not be obtained.
	IndexTotal int64 `json:"index_total" yaml:"index_total"`

	// Fatal holds the run-fatal error message, if the pass was aborted.
	Fatal string `json:"fatal,omitempty" yaml:"fatal,omitempty"`
}

// RecordFailure appends a failure entry built from a DocumentError.
func (r *SyncReport) RecordFailure(err *DocumentError) {
	r.Failed = append(r.Failed, DocumentFailure{
		Name:    err.Name,
		Reason:  err.Reason,
		Message: err.Err.Error(),
	})
}

// Aborted reports whether the pass was halted by a run-fatal error.
func (r *SyncReport) Aborted() bool {
	return r.Fatal != ""
}

// Duration returns how long the pass took.
func (r *SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
