package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// errUnexpectedShape is returned when a search payload lacks required fields.
var errUnexpectedShape = errors.New("unexpected search response shape")

// QueryService maps free-text queries onto match queries against the
// text field. Every call goes to the engine; nothing is cached.
type QueryService struct {
	engine driven.SearchEngine
	index  string
	size   int
}

// NewQueryService creates a query service. size <= 0 lets the engine
// apply its default result size.
func NewQueryService(engine driven.SearchEngine, index string, size int) *QueryService {
	return &QueryService{
		engine: engine,
		index:  index,
		size:   size,
	}
}

// Search runs term against the index. The term is passed through
// unmodified, including the empty term.
func (s *QueryService) Search(ctx context.Context, term string) (*driving.QueryResponse, error) {
	logger.Section("Query Execution")
	logger.Debug("Query: %q", term)

	raw, err := s.engine.Match(ctx, s.index, domain.TextField, term, s.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}

	result, err := ParseSearchResponse(raw)
	if err != nil {
		logger.Warn("Returning raw engine response: %v", err)
		return &driving.QueryResponse{Raw: raw}, nil
	}

	logger.Debug("Results: %d", result.TotalCount)
	return &driving.QueryResponse{Result: result, Raw: raw}, nil
}

// searchResponse mirrors the parts of an Elasticsearch search response
// the result is built from. Pointers distinguish absent from zero.
type searchResponse struct {
	Hits *struct {
		Total *struct {
			Value *int `json:"value"`
		} `json:"total"`
		Hits *[]struct {
			ID *string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// ParseSearchResponse extracts the total and the ordered hit IDs from a
// search payload. It fails when hits.total.value, hits.hits or any
// hit's _id is missing.
func ParseSearchResponse(raw json.RawMessage) (*domain.QueryResult, error) {
	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", errUnexpectedShape, err)
	}
	if resp.Hits == nil {
		return nil, fmt.Errorf("%w: missing hits", errUnexpectedShape)
	}
	if resp.Hits.Total == nil || resp.Hits.Total.Value == nil {
		return nil, fmt.Errorf("%w: missing hits.total.value", errUnexpectedShape)
	}
	if resp.Hits.Hits == nil {
		return nil, fmt.Errorf("%w: missing hits.hits", errUnexpectedShape)
	}

	hits := *resp.Hits.Hits
	ids := make([]string, 0, len(hits))
	for i, hit := range hits {
		if hit.ID == nil {
			return nil, fmt.Errorf("%w: hit %d has no _id", errUnexpectedShape, i)
		}
		ids = append(ids, *hit.ID)
	}

	return &domain.QueryResult{
		TotalCount:  *resp.Hits.Total.Value,
		DocumentIDs: ids,
	}, nil
}
