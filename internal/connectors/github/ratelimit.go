package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docsync/internal/logger"
)

const (
	// DefaultRequestsPerSecond paces requests below the authenticated
	// quota of 5000 requests per hour.
	DefaultRequestsPerSecond = 1.2

	// quotaReserve is the number of requests left untouched before the
	// throttle waits for the quota window to reset.
	quotaReserve = 100
)

// Throttle paces requests and backs off when the GitHub quota runs low.
// The quota is learned from the rate fields go-github parses out of every
// response.
type Throttle struct {
	pace    *rate.Limiter
	reserve int

	mu    sync.Mutex
	quota gh.Rate
}

// NewThrottle creates a throttle allowing perSecond requests.
// A non-positive rate disables pacing; the quota check still applies.
func NewThrottle(perSecond float64) *Throttle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Throttle{
		pace:    rate.NewLimiter(limit, 1),
		reserve: quotaReserve,
	}
}

// Wait blocks until the next request may be sent.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := t.pace.Wait(ctx); err != nil {
		return err
	}

	q := t.Quota()
	if q.Limit == 0 || q.Remaining >= t.reserve {
		return nil
	}
	wait := time.Until(q.Reset.Time)
	if wait <= 0 {
		return nil
	}

	logger.Warn("github: %d of %d requests left, pausing %s until quota reset",
		q.Remaining, q.Limit, wait.Round(time.Second))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota reported with a response. Responses that carry
// no rate information are ignored.
func (t *Throttle) Observe(r gh.Rate) {
	if r.Limit == 0 {
		return
	}
	t.mu.Lock()
	t.quota = r
	t.mu.Unlock()
}

// Quota returns the last observed quota.
func (t *Throttle) Quota() gh.Rate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quota
}
