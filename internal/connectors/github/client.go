package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with pacing and error translation.
type Client struct {
	gh       *gh.Client
	throttle *Throttle
}

// NewClientWithToken creates a client authenticated with a personal access
// or OAuth token.
func NewClientWithToken(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return NewClientWithHTTPClient(tc)
}

// NewClientWithHTTPClient creates a client over httpClient.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		gh:       gh.NewClient(httpClient),
		throttle: NewThrottle(DefaultRequestsPerSecond),
	}
}

// Throttle returns the client's request throttle.
func (c *Client) Throttle() *Throttle {
	return c.throttle
}

// ValidateCredentials returns the login the token belongs to.
func (c *Client) ValidateCredentials(ctx context.Context) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := c.gh.Users.Get(ctx, "")
	c.observe(resp)
	if err != nil {
		return "", c.wrapError(err, "validate credentials")
	}
	return user.GetLogin(), nil
}

// ListDirectory returns the entries directly inside a repository directory.
func (c *Client) ListDirectory(ctx context.Context, loc Location) ([]*gh.RepositoryContent, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: loc.Ref}
	file, dir, resp, err := c.gh.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get contents")
	}
	if file != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, loc)
	}
	return dir, nil
}

// GetBlobRaw fetches the raw bytes of a blob by its SHA.
func (c *Client) GetBlobRaw(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	data, resp, err := c.gh.Git.GetBlobRaw(ctx, owner, repo, sha)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get blob")
	}
	return data, nil
}

// observe feeds the quota go-github parsed from resp to the throttle.
func (c *Client) observe(resp *gh.Response) {
	if resp != nil {
		c.throttle.Observe(resp.Rate)
	}
}

// wrapError translates go-github errors into this package's error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		c.throttle.Observe(rateErr.Rate)
		return &RateLimitError{ResetAt: rateErr.Rate.Reset.Time}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := time.Now()
		if abuseErr.RetryAfter != nil {
			reset = reset.Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: reset, Secondary: true}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
