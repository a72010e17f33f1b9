// Package elastic provides a search engine adapter for Elasticsearch
// built on the official go-elasticsearch client.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/retry"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:9200"
	DefaultTimeout = 30 * time.Second
)

// maxErrorBody caps how much of an error response is quoted in errors.
const maxErrorBody = 512

// retryStatuses are retried by the client transport.
var retryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Config holds configuration for the Elasticsearch adapter.
type Config struct {
	// URL is the cluster base URL (default: http://localhost:9200).
	URL string

	// Username and Password enable basic auth when Username is set.
	Username string
	Password string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries is how often a throttled or unavailable response is retried.
	// Zero disables retries.
	MaxRetries int

	// RetryDelay is the backoff before the first retry (default: 500ms).
	RetryDelay time.Duration

	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Engine talks to a single Elasticsearch cluster.
type Engine struct {
	es        *elasticsearch.Client
	transport http.RoundTripper
	url       string
	timeout   time.Duration
}

// StatusError is a non-success response from Elasticsearch.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Body)
}

// New creates a new Elasticsearch adapter.
func New(cfg Config) (*Engine, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	backoff := retry.DefaultConfig()
	if cfg.RetryDelay > 0 {
		backoff.InitialDelay = cfg.RetryDelay
	}

	url := strings.TrimRight(cfg.URL, "/")
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{url},
		Username:      cfg.Username,
		Password:      cfg.Password,
		Transport:     transport,
		RetryOnStatus: retryStatuses,
		MaxRetries:    max(cfg.MaxRetries, 0),
		DisableRetry:  cfg.MaxRetries <= 0,
		RetryBackoff:  backoff.Backoff,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineConnectionFailed, err)
	}

	return &Engine{
		es:        es,
		transport: transport,
		url:       url,
		timeout:   cfg.Timeout,
	}, nil
}

// infoResponse is the GET / response format.
type infoResponse struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Info returns the cluster identification.
func (e *Engine) Info(ctx context.Context) (*domain.EngineInfo, error) {
	body, err := e.do(ctx, "info", func(ctx context.Context) (*esapi.Response, error) {
		return e.es.Info(e.es.Info.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}

	var info infoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: decode info: %w", domain.ErrEngineConnectionFailed, err)
	}
	return &domain.EngineInfo{
		Name:    "elasticsearch",
		Version: info.Version.Number,
		Cluster: info.ClusterName,
	}, nil
}

// IndexExists reports whether the index exists.
func (e *Engine) IndexExists(ctx context.Context, index string) (bool, error) {
	_, err := e.do(ctx, "exists "+index, func(ctx context.Context) (*esapi.Response, error) {
		return e.es.Indices.Exists([]string{index}, e.es.Indices.Exists.WithContext(ctx))
	})
	if err == nil {
		return true, nil
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// CreateIndex creates the index with a mapping built from schema.
func (e *Engine) CreateIndex(ctx context.Context, index string, schema domain.IndexSchema) error {
	properties := make(map[string]any, len(schema.Fields))
	for name, fieldType := range schema.Fields {
		properties[name] = map[string]string{"type": string(fieldType)}
	}
	payload, err := json.Marshal(map[string]any{
		"mappings": map[string]any{
			"properties": properties,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	_, err = e.do(ctx, "create "+index, func(ctx context.Context) (*esapi.Response, error) {
		return e.es.Indices.Create(index,
			e.es.Indices.Create.WithBody(bytes.NewReader(payload)),
			e.es.Indices.Create.WithContext(ctx),
		)
	})
	return err
}

// Upsert indexes entry under its ID, replacing any existing document.
func (e *Engine) Upsert(ctx context.Context, index string, entry domain.IndexEntry) error {
	payload, err := json.Marshal(map[string]string{domain.TextField: entry.Text})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = e.do(ctx, "index "+index+"/"+entry.ID, func(ctx context.Context) (*esapi.Response, error) {
		return e.es.Index(index, bytes.NewReader(payload),
			e.es.Index.WithDocumentID(entry.ID),
			e.es.Index.WithContext(ctx),
		)
	})
	return err
}

// Match runs a match query and returns the raw search response.
func (e *Engine) Match(ctx context.Context, index, field, term string, size int) (json.RawMessage, error) {
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{field: term},
		},
	}
	if size > 0 {
		query["size"] = size
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	body, err := e.do(ctx, "search "+index, func(ctx context.Context) (*esapi.Response, error) {
		return e.es.Search(
			e.es.Search.WithContext(ctx),
			e.es.Search.WithIndex(index),
			e.es.Search.WithBody(bytes.NewReader(payload)),
		)
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// countResponse is the _count response format.
type countResponse struct {
	Count *int64 `json:"count"`
}

// Count returns the number of documents in the index.
func (e *Engine) Count(ctx context.Context, index string) (int64, error) {
	body, err := e.do(ctx, "count "+index, func(ctx context.Context) (*esapi.Response, error) {
		return e.es.Count(e.es.Count.WithContext(ctx), e.es.Count.WithIndex(index))
	})
	if err != nil {
		return 0, err
	}

	var resp countResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	if resp.Count == nil {
		return 0, errors.New("decode count: missing count")
	}
	return *resp.Count, nil
}

// Close releases idle connections.
func (e *Engine) Close() error {
	if t, ok := e.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// do runs one API call under the request timeout and returns the response
// body. Transport failures and rejected credentials wrap
// domain.ErrEngineConnectionFailed; other non-2xx answers are a
// *StatusError.
func (e *Engine) do(ctx context.Context, op string, call func(context.Context) (*esapi.Response, error)) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger.Debug("ES %s", op)
	res, err := call(reqCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrEngineConnectionFailed, op, e.url, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}

	if res.IsError() {
		snippet := body
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		se := &StatusError{Op: op, Code: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", domain.ErrEngineConnectionFailed, se)
		}
		return nil, se
	}
	return body, nil
}
