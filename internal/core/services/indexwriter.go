package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// IndexWriter writes extracted text into a single named index.
// Entries are keyed by document name, so repeated writes overwrite.
type IndexWriter struct {
	engine driven.SearchEngine
	index  string
	schema domain.IndexSchema
}

// NewIndexWriter creates a writer for index using the fixed text schema.
func NewIndexWriter(engine driven.SearchEngine, index string) *IndexWriter {
	return &IndexWriter{
		engine: engine,
		index:  index,
		schema: domain.DefaultIndexSchema(),
	}
}

// Index returns the target index name.
func (w *IndexWriter) Index() string {
	return w.index
}

// EnsureIndex creates the target index if it does not exist.
// It is safe to call at the start of every run. An existing index is
// left untouched, whatever its mapping.
func (w *IndexWriter) EnsureIndex(ctx context.Context) error {
	if w.index == "" {
		return fmt.Errorf("%w: %w: index name is empty", domain.ErrIndexSetupFailed, domain.ErrInvalidInput)
	}

	exists, err := w.engine.IndexExists(ctx, w.index)
	if err != nil {
		return fmt.Errorf("%w: check index %s: %w", domain.ErrIndexSetupFailed, w.index, err)
	}
	if exists {
		logger.Debug("Index %s exists", w.index)
		return nil
	}

	logger.Debug("Creating index %s", w.index)
	if err := w.engine.CreateIndex(ctx, w.index, w.schema); err != nil {
		return fmt.Errorf("%w: create index %s: %w", domain.ErrIndexSetupFailed, w.index, err)
	}
	return nil
}

// Upsert writes text under id, replacing any previous entry with that id.
// Every failure wraps domain.ErrIndexWriteFailed; connectivity failures
// additionally keep domain.ErrEngineConnectionFailed in the chain.
func (w *IndexWriter) Upsert(ctx context.Context, id, text string) error {
	if id == "" {
		return fmt.Errorf("%w: %w: empty document id", domain.ErrIndexWriteFailed, domain.ErrInvalidInput)
	}

	entry := domain.IndexEntry{ID: id, Text: text}
	if err := w.engine.Upsert(ctx, w.index, entry); err != nil {
		if errors.Is(err, domain.ErrIndexWriteFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrIndexWriteFailed, err)
	}
	return nil
}
