package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SearchEngine is the full-text store documents are indexed into.
// Backed by Elasticsearch over REST, or an embedded Bleve index.
//
// Errors caused by connectivity or authentication must wrap
// domain.ErrEngineConnectionFailed.
type SearchEngine interface {
	// Info returns engine identification. It doubles as a connectivity check.
	Info(ctx context.Context) (*domain.EngineInfo, error)

	// IndexExists reports whether the named index exists.
	IndexExists(ctx context.Context, index string) (bool, error)

	// CreateIndex creates the named index with the given schema.
	CreateIndex(ctx context.Context, index string, schema domain.IndexSchema) error

	// Upsert writes or overwrites the entry with entry.ID.
	Upsert(ctx context.Context, index string, entry domain.IndexEntry) error

	// Match runs a full-text match query of term against field and returns
	// the engine's response payload in the Elasticsearch search-response shape:
	//   {"hits": {"total": {"value": N}, "hits": [{"_id": "...", "_score": 1.2}]}}
	Match(ctx context.Context, index, field, term string, size int) (json.RawMessage, error)

	// Count returns the number of entries in the index.
	Count(ctx context.Context, index string) (int64, error)

	// Close releases resources.
	Close() error
}
