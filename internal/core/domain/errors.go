package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown store or engine type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Per-document errors. A sync pass records these and moves on.

	// ErrFetchFailed indicates the document content could not be downloaded.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrExtractionFailed indicates the extraction service did not return text.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmptyText indicates extraction succeeded but produced no usable text.
	ErrEmptyText = errors.New("empty text")

	// ErrIndexWriteFailed indicates the search engine rejected an upsert.
	ErrIndexWriteFailed = errors.New("index write failed")

	// Run-fatal errors. A sync pass stops when it sees one of these.

	// ErrIndexSetupFailed indicates the target index could not be checked or created.
	ErrIndexSetupFailed = errors.New("index setup failed")

	// ErrStoreConnectionFailed indicates the document store is unreachable
	// or rejected the credentials.
	ErrStoreConnectionFailed = errors.New("document store connection failed")

	// ErrEngineConnectionFailed indicates the search engine is unreachable
	// or rejected the credentials.
	ErrEngineConnectionFailed = errors.New("search engine connection failed")

	// Query errors.

	// ErrQueryFailed indicates the search engine could not execute a query.
	ErrQueryFailed = errors.New("query failed")
)

// IsFatal reports whether err must halt a sync pass rather than be
// recorded against a single document.
func IsFatal(err error) bool {
	return errors.Is(err, ErrIndexSetupFailed) ||
		errors.Is(err, ErrStoreConnectionFailed) ||
		errors.Is(err, ErrEngineConnectionFailed)
}

// DocumentError is a per-document failure carried into the sync report.
type DocumentError struct {
	// Name is the document name.
	Name string

	// Reason classifies the failure.
	Reason FailureReason

	// Err is the underlying cause.
	Err error
}

// NewDocumentError wraps err for the named document, deriving the reason
// from the sentinel err wraps.
func NewDocumentError(name string, err error) *DocumentError {
	return &DocumentError{
		Name:   name,
		Reason: ReasonFor(err),
		Err:    err,
	}
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Name, e.Reason, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// ReasonFor maps an error to the failure reason of the first per-document
// sentinel it wraps. Unknown errors are classified as fetch failures since
// fetching is the first step that can fail.
func ReasonFor(err error) FailureReason {
	switch {
	case errors.Is(err, ErrEmptyText):
		return ReasonEmptyText
	case errors.Is(err, ErrExtractionFailed):
		return ReasonExtractionFailed
	case errors.Is(err, ErrIndexWriteFailed):
		return ReasonIndexWriteFailed
	default:
		return ReasonFetchFailed
	}
}
