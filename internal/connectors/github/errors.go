package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrInvalidContainer indicates the container string could not be parsed.
	ErrInvalidContainer = errors.New("github: invalid container, want owner/repo[/path][@ref]")

	// ErrInvalidRemoteID indicates a remote ID not produced by List.
	ErrInvalidRemoteID = errors.New("github: invalid remote id")

	// ErrNotDirectory indicates the container path names a file.
	ErrNotDirectory = errors.New("github: container path is not a directory")
)

// RateLimitError reports an exhausted quota or a secondary rate limit.
type RateLimitError struct {
	ResetAt time.Time
	// Secondary marks GitHub's abuse detection limit rather than the
	// hourly quota.
	Secondary bool
}

func (e *RateLimitError) Error() string {
	kind := "rate limit"
	if e.Secondary {
		kind = "secondary rate limit"
	}
	return fmt.Sprintf("github: %s exceeded, retry after %s", kind, e.ResetAt.Format(time.RFC3339))
}

// APIError is a non-2xx answer from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("github: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %d %s (%s)", e.StatusCode, e.Message, e.URL)
}

// statusOf returns the HTTP status carried by err, or 0.
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports a 404 answer.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports a rejected token.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports a token lacking access to the resource.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsRateLimited reports either kind of rate limiting.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}
