package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// RateMode selects how the gateway reacts when the API quota runs out.
type RateMode string

const (
	// RateWait sleeps until the quota window resets and retries, bounded
	// by RatePolicy.MaxWait.
	RateWait RateMode = "wait"
	// RateFailFast surfaces a RateLimitedError immediately.
	RateFailFast RateMode = "fail-fast"
)

const (
	defaultMaxRateWait = 15 * time.Minute
	defaultLowWater    = 2
	// minRateSleep floors reset waits so that clock skew between this
	// host and the API never produces a zero-length sleep followed by
	// another 429.
	minRateSleep = 5 * time.Second

	maxAttemptsPerPage    = 3
	maxRateRetriesPerPage = 2
	retryBackoffBase      = 1 * time.Second
	maxRetryBackoff       = 30 * time.Second
)

// RatePolicy configures rate limit handling for a gateway instance.
// The zero value waits for quota resets up to 15 minutes and pauses
// preemptively when fewer than 2 requests remain.
type RatePolicy struct {
	Mode RateMode
	// MaxWait bounds a single reset wait. Waits longer than this surface
	// a RateLimitedError instead of sleeping.
	MaxWait time.Duration
	// LowWater pauses before the next request once the remaining quota
	// drops to this level. Set to a negative value to disable the
	// preflight check.
	LowWater int
}

func (p RatePolicy) withDefaults() RatePolicy {
	if p.Mode == "" {
		p.Mode = RateWait
	}
	if p.MaxWait <= 0 {
		p.MaxWait = defaultMaxRateWait
	}
	if p.LowWater == 0 {
		p.LowWater = defaultLowWater
	}
	return p
}

// quotaState tracks the most recently observed core rate limit headers.
// It belongs to a single gateway instance.
type quotaState struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
	observed  bool
}

func (q *quotaState) observe(resp *github.Response) {
	if resp == nil {
		return
	}
	q.mu.Lock()
	q.remaining = resp.Rate.Remaining
	q.resetAt = resp.Rate.Reset.Time
	q.observed = true
	q.mu.Unlock()
}

func (q *quotaState) snapshot() (remaining int, resetAt time.Time, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remaining, q.resetAt, q.observed
}

// forget drops the cached snapshot. Called after sleeping through a quota
// reset, when the cached "remaining" no longer describes the new window.
func (q *quotaState) forget() {
	q.mu.Lock()
	q.observed = false
	q.mu.Unlock()
}

// waitForQuota pauses before a request when the previous response showed
// the quota nearly exhausted. Waiting here converts a guaranteed 403 into
// a short sleep, which keeps retry counters free for real failures.
func (g *GitHubGateway) waitForQuota(ctx context.Context) error {
	if g.policy.LowWater < 0 {
		return nil
	}
	remaining, resetAt, ok := g.quota.snapshot()
	if !ok || remaining > g.policy.LowWater || !g.now().Before(resetAt) {
		return nil
	}
	wait := resetAt.Sub(g.now()) + time.Second
	if g.policy.Mode == RateFailFast || wait > g.policy.MaxWait {
		return &domain.RateLimitedError{ResetAt: resetAt}
	}
	g.logger.Printf("  Rate limit nearly exhausted, pausing %s until reset...", wait.Round(time.Second))
	if err := g.sleep(ctx, wait); err != nil {
		return err
	}
	g.quota.forget()
	return nil
}

// rateLimitReset extracts the quota reset instant from a rate limit error.
// Secondary rate limits carry a Retry-After duration instead of a reset
// timestamp, so those are converted relative to now.
func rateLimitReset(now time.Time, err error) (time.Time, bool) {
	var primary *github.RateLimitError
	if errors.As(err, &primary) {
		return primary.Rate.Reset.Time, true
	}
	var secondary *github.AbuseRateLimitError
	if errors.As(err, &secondary) {
		wait := minRateSleep
		if secondary.RetryAfter != nil {
			wait = *secondary.RetryAfter
		}
		return now.Add(wait), true
	}
	return time.Time{}, false
}

// sleepContext sleeps for d or until the context is done, whichever comes
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
