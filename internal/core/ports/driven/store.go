package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// DocumentStore lists and streams documents from a remote container.
// Each store type (dropbox, gdrive, github, filesystem) implements this interface.
//
// Errors caused by connectivity or authentication must wrap
// domain.ErrStoreConnectionFailed so the orchestrator can stop the run.
// Any other Fetch error is treated as a failure of that document only.
type DocumentStore interface {
	// Type returns the store type identifier.
	Type() string

	// Validate checks the store is reachable and the credentials are accepted.
	Validate(ctx context.Context) error

	// List returns every entry in the container.
	List(ctx context.Context, container string) ([]domain.DocumentRef, error)

	// Fetch streams the content of a document by its remote ID.
	// The caller must close the returned reader.
	Fetch(ctx context.Context, remoteID string) (io.ReadCloser, error)

	// Close releases resources.
	Close() error
}

// Watcher is implemented by stores that can signal container changes.
type Watcher interface {
	// Watch sends on the returned channel whenever the container changes.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, container string) (<-chan struct{}, error)
}
