// Package blevesearch provides an embedded search engine adapter using Bleve v2.
// Search responses are rendered in the Elasticsearch response shape so the
// query service handles both engines the same way.
package blevesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bolt "go.etcd.io/bbolt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

const (
	// indexSuffix is appended to index names to form directory names.
	indexSuffix = ".bleve"

	// defaultSize matches the Elasticsearch default page size.
	defaultSize = 10

	// DefaultLockTimeout bounds the wait for an on-disk index held by
	// another process.
	DefaultLockTimeout = 5 * time.Second
)

// errClosed is returned for operations on a closed engine.
var errClosed = errors.New("engine is closed")

// Engine manages named Bleve indexes under one directory.
// An empty directory keeps every index in memory.
type Engine struct {
	mu          sync.RWMutex
	dir         string
	indexes     map[string]bleve.Index
	closed      bool
	lockTimeout time.Duration
}

// New creates an engine rooted at dir. Pass "" for in-memory indexes.
func New(dir string) (*Engine, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create directory %s: %w", domain.ErrEngineConnectionFailed, dir, err)
		}
	}
	return &Engine{
		dir:         dir,
		indexes:     make(map[string]bleve.Index),
		lockTimeout: DefaultLockTimeout,
	}, nil
}

// Info identifies the embedded engine.
func (e *Engine) Info(_ context.Context) (*domain.EngineInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineConnectionFailed, errClosed)
	}

	location := e.dir
	if location == "" {
		location = "memory"
	}
	return &domain.EngineInfo{Name: "bleve", Version: "v2", Cluster: location}, nil
}

// IndexExists reports whether the index is open or present on disk.
func (e *Engine) IndexExists(_ context.Context, index string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false, errClosed
	}

	if _, ok := e.indexes[index]; ok {
		return true, nil
	}
	if e.dir == "" {
		return false, nil
	}
	_, err := os.Stat(e.path(index))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CreateIndex creates the index with a mapping built from schema.
func (e *Engine) CreateIndex(_ context.Context, index string, schema domain.IndexSchema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errClosed
	}
	if _, ok := e.indexes[index]; ok {
		return fmt.Errorf("index %s already exists", index)
	}

	indexMapping := buildMapping(schema)

	var idx bleve.Index
	var err error
	if e.dir == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		idx, err = bleve.NewUsing(e.path(index), indexMapping,
			bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, e.runtimeConfig())
	}
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, lockError(err))
	}

	e.indexes[index] = idx
	return nil
}

// Upsert indexes entry under its ID. Bleve replaces documents by ID.
func (e *Engine) Upsert(_ context.Context, index string, entry domain.IndexEntry) error {
	idx, err := e.open(index)
	if err != nil {
		return err
	}
	doc := map[string]any{domain.TextField: entry.Text}
	if err := idx.Index(entry.ID, doc); err != nil {
		return fmt.Errorf("index document %s: %w", entry.ID, err)
	}
	return nil
}

// Match runs a match query against field and renders an
// Elasticsearch-shaped response.
func (e *Engine) Match(ctx context.Context, index, field, term string, size int) (json.RawMessage, error) {
	idx, err := e.open(index)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultSize
	}

	query := bleve.NewMatchQuery(term)
	query.SetField(field)
	req := bleve.NewSearchRequestOptions(query, size, 0, false)

	result, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	resp := searchResponse{Took: result.Took.Milliseconds()}
	resp.Hits.Total.Value = result.Total
	resp.Hits.Total.Relation = "eq"
	resp.Hits.MaxScore = result.MaxScore
	resp.Hits.Hits = make([]searchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		resp.Hits.Hits = append(resp.Hits.Hits, searchHit{Index: index, ID: hit.ID, Score: hit.Score})
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}

// Count returns the number of documents in the index.
func (e *Engine) Count(_ context.Context, index string) (int64, error) {
	idx, err := e.open(index)
	if err != nil {
		return 0, err
	}
	count, err := idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return int64(count), nil
}

// Close closes every open index.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for name, idx := range e.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	e.indexes = nil
	return errors.Join(errs...)
}

// open returns the named index, opening it from disk on first use.
func (e *Engine) open(index string) (bleve.Index, error) {
	e.mu.RLock()
	idx, ok := e.indexes[index]
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, errClosed
	}
	if ok {
		return idx, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, ok := e.indexes[index]; ok {
		return idx, nil
	}
	if e.dir == "" {
		return nil, fmt.Errorf("index %s: %w", index, domain.ErrNotFound)
	}

	idx, err := bleve.OpenUsing(e.path(index), e.runtimeConfig())
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return nil, fmt.Errorf("index %s: %w", index, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open index %s: %w", index, lockError(err))
	}
	e.indexes[index] = idx
	return idx, nil
}

// runtimeConfig returns a fresh scorch config; bleve mutates the map it is given.
func (e *Engine) runtimeConfig() map[string]interface{} {
	return map[string]interface{}{"bolt_timeout": e.lockTimeout.String()}
}

// lockError marks a timed out bolt lock as an unreachable engine.
func lockError(err error) error {
	if errors.Is(err, bolt.ErrTimeout) {
		return fmt.Errorf("%w: index locked by another process: %w", domain.ErrEngineConnectionFailed, err)
	}
	return err
}

func (e *Engine) path(index string) string {
	return filepath.Join(e.dir, index+indexSuffix)
}

// buildMapping maps every schema field to an analysed text field.
func buildMapping(schema domain.IndexSchema) *mapping.IndexMappingImpl {
	docMapping := bleve.NewDocumentMapping()
	for name, fieldType := range schema.Fields {
		if fieldType != domain.FieldTypeText {
			continue
		}
		field := bleve.NewTextFieldMapping()
		field.Analyzer = standard.Name
		docMapping.AddFieldMappingsAt(name, field)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value    uint64 `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore float64     `json:"max_score"`
		Hits     []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	Index string  `json:"_index"`
	ID    string  `json:"_id"`
	Score float64 `json:"_score"`
}
