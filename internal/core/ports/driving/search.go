package driving

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// QueryService answers free-text queries against the index.
type QueryService interface {
	// Search runs term against the index. The empty term is passed through.
	// An error is returned only when the engine could not be queried.
	Search(ctx context.Context, term string) (*QueryResponse, error)
}

// QueryResponse carries either a normalised result or, when the engine
// payload did not have the expected shape, only the raw payload.
type QueryResponse struct {
	// Result is nil for a degraded response.
	Result *domain.QueryResult

	// Raw is the engine payload as received.
	Raw json.RawMessage
}

// Degraded reports whether only the raw payload is available.
func (r *QueryResponse) Degraded() bool {
	return r.Result == nil
}

// Payload returns the value to hand to a caller: the normalised result or
// the raw engine payload.
func (r *QueryResponse) Payload() any {
	if r.Degraded() {
		return r.Raw
	}
	return r.Result
}
