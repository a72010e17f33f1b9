package google

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/docsync/internal/logger"
)

const (
	// DriveRequestsPerSecond stays under Drive's 10 requests per second per user.
	DriveRequestsPerSecond = 8.0

	// DriveBurst is the number of requests allowed back to back.
	DriveBurst = 10

	// defaultPause applies after a 429 without a usable Retry-After header.
	defaultPause = time.Minute
)

// Pacer spaces API requests and pauses all of them after a 429 answer.
type Pacer struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

// NewPacer creates a pacer allowing perSecond requests with the given burst.
// A non-positive rate disables spacing.
func NewPacer(perSecond float64, burst int) *Pacer {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the next request may be sent.
func (p *Pacer) Wait(ctx context.Context) error {
	if wait := time.Until(p.PausedUntil()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return p.limiter.Wait(ctx)
}

// Backoff pauses the pacer when err is a rate limit answer and reports
// whether it did.
func (p *Pacer) Backoff(err error) bool {
	if !IsRateLimited(err) {
		return false
	}
	pause := retryAfter(err)
	if pause <= 0 {
		pause = defaultPause
	}
	logger.Warn("google: rate limited, pausing requests for %s", pause)

	p.mu.Lock()
	p.pausedUntil = time.Now().Add(pause)
	p.mu.Unlock()
	return true
}

// PausedUntil returns the end of the current pause, or the zero time.
func (p *Pacer) PausedUntil() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pausedUntil
}

// retryAfter reads the Retry-After seconds of a googleapi error.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
