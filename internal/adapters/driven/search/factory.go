// Package search provides the factory for search engine adapters.
package search

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docsync/internal/adapters/driven/search/blevesearch"
	"github.com/custodia-labs/docsync/internal/adapters/driven/search/elastic"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

const (
	// engineMaxRetries is how often throttled Elasticsearch calls are retried.
	engineMaxRetries = 3

	// indexDirName is the directory under the data dir holding Bleve indexes.
	indexDirName = "indexes"
)

// NewEngine creates the search engine named by settings.Type.
// dataDir is only used by the embedded engine; an empty dataDir keeps its
// indexes in memory.
func NewEngine(settings domain.EngineSettings, dataDir string) (driven.SearchEngine, error) {
	switch settings.Type {
	case domain.EngineElasticsearch:
		engine, err := elastic.New(elastic.Config{
			URL:        settings.URL,
			Username:   settings.Username,
			Password:   settings.Password,
			Timeout:    time.Duration(settings.TimeoutSeconds) * time.Second,
			MaxRetries: engineMaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return engine, nil

	case domain.EngineBleve:
		dir := ""
		if dataDir != "" {
			dir = filepath.Join(dataDir, indexDirName)
		}
		engine, err := blevesearch.New(dir)
		if err != nil {
			return nil, err
		}
		return engine, nil

	default:
		return nil, fmt.Errorf("%w: engine type %q", domain.ErrUnsupportedType, settings.Type)
	}
}
