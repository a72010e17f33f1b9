// Package tika provides a text extractor backed by an Apache Tika server.
package tika

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gotika "github.com/google/go-tika/tika"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/retry"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:9998/tika"
	DefaultTimeout = 120 * time.Second
)

// parsePath is the endpoint go-tika appends to the server URL.
const parsePath = "/tika"

// Config holds configuration for the Tika extractor.
type Config struct {
	// URL is the Tika parse endpoint (default: http://localhost:9998/tika).
	// A bare server URL is accepted too.
	URL string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration

	// MaxRetries is how often a transport error or 5xx is retried.
	MaxRetries int

	// RetryDelay is the backoff before the first retry (default: 500ms).
	RetryDelay time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Extractor sends raw document bytes to Tika and returns the plain text.
type Extractor struct {
	client  *gotika.Client
	http    *http.Client
	url     string
	retry   retry.Config
	limiter *rate.Limiter
}

// statusError is a non-success response from Tika.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.code)
}

// octetStream labels request bodies as raw bytes so Tika detects the type
// from content.
type octetStream struct {
	base http.RoundTripper
}

func (t *octetStream) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Content-Type", "application/octet-stream")
	return t.base.RoundTrip(req)
}

// New creates a new Tika extractor.
func New(cfg Config) *Extractor {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		client = &copied
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = &octetStream{base: base}

	rc := retry.DefaultConfig()
	rc.MaxRetries = max(cfg.MaxRetries, 0)
	rc.Retryable = isRetryable
	if cfg.RetryDelay > 0 {
		rc.InitialDelay = cfg.RetryDelay
	}

	server := strings.TrimSuffix(strings.TrimRight(cfg.URL, "/"), parsePath)
	e := &Extractor{
		client: gotika.NewClient(client, server),
		http:   client,
		url:    cfg.URL,
		retry:  rc,
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e
}

// Extract PUTs content to Tika's parse endpoint as an octet stream and returns the response
// body as text. Every failure wraps domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, content io.Reader) (string, error) {
	body, err := rewindable(content)
	if err != nil {
		return "", fmt.Errorf("%w: read content: %w", domain.ErrExtractionFailed, err)
	}

	attempt := 0
	text, err := retry.DoWithResult(ctx, e.retry, func() (string, error) {
		attempt++
		if attempt > 1 {
			logger.Debug("Retrying extraction (attempt %d)", attempt)
		}
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
		return e.parse(ctx, body)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return text, nil
}

func (e *Extractor) parse(ctx context.Context, body io.Reader) (string, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	text, err := e.client.Parse(ctx, body)
	if err != nil {
		var ce gotika.ClientError
		if errors.As(err, &ce) {
			return "", &statusError{code: ce.StatusCode}
		}
		return "", err
	}
	return text, nil
}

// isRetryable retries transport failures and server errors. Client errors
// such as 415 or 422 mean Tika rejected the document itself.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

// rewindable returns content as an io.ReadSeeker, buffering it only when
// the reader cannot seek.
func rewindable(content io.Reader) (io.ReadSeeker, error) {
	if rs, ok := content.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
