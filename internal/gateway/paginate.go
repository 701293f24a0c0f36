package gateway

import (
	"context"
	"errors"
	"math"
	"net/url"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// doPage executes a single API call with quota preflight, bounded retries
// for transient failures, and mapping into the shared error taxonomy.
// Rate limit waits and exponential backoff both go through the gateway's
// sleep function so they stay interruptible by the context.
func doPage[T any](ctx context.Context, g *GitHubGateway, fetch func(ctx context.Context) (T, *github.Response, error)) (T, *github.Response, error) {
	var zero T
	rateRetries := 0
	for attempt := 0; ; attempt++ {
		if err := g.waitForQuota(ctx); err != nil {
			return zero, nil, err
		}

		result, resp, err := fetch(ctx)
		g.quota.observe(resp)
		if err == nil {
			return result, resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return zero, resp, domain.ErrTimeout
			}
			return zero, resp, ctxErr
		}

		if resetAt, ok := rateLimitReset(g.now(), err); ok {
			wait := resetAt.Sub(g.now())
			if wait < minRateSleep {
				wait = minRateSleep
			}
			if g.policy.Mode == RateFailFast || rateRetries >= maxRateRetriesPerPage || wait > g.policy.MaxWait {
				return zero, resp, &domain.RateLimitedError{ResetAt: resetAt}
			}
			g.logger.Printf("  Rate limited, waiting %s for quota reset...", wait.Round(time.Second))
			if err := g.sleep(ctx, wait); err != nil {
				return zero, resp, err
			}
			g.quota.forget()
			rateRetries++
			continue
		}

		if isRetryable(err) && attempt < maxAttemptsPerPage-1 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * retryBackoffBase
			if backoff > maxRetryBackoff {
				backoff = maxRetryBackoff
			}
			g.logger.Printf("  Transient error (%v), retrying in %s...", err, backoff)
			if err := g.sleep(ctx, backoff); err != nil {
				return zero, resp, err
			}
			continue
		}

		return zero, resp, mapError(err)
	}
}

// collectPages walks a paginated listing until the last page or until limit
// records have been collected. Pages of a single listing are fetched
// sequentially; concurrency belongs to callers fetching independent
// resources.
func collectPages[T any](ctx context.Context, g *GitHubGateway, limit int, fetch func(ctx context.Context, page int) ([]T, *github.Response, error)) ([]T, error) {
	if limit <= 0 {
		limit = g.maxItems
	}
	var collected []T
	page := 0
	for {
		items, resp, err := doPage(ctx, g, func(ctx context.Context) ([]T, *github.Response, error) {
			return fetch(ctx, page)
		})
		if err != nil {
			return nil, err
		}
		collected = append(collected, items...)
		if len(collected) >= limit {
			return collected[:limit], nil
		}
		if resp == nil || resp.NextPage == 0 {
			return collected, nil
		}
		page = resp.NextPage
		g.logger.Println("  Fetching next page...")
	}
}

// isRetryable reports whether an error is worth retrying with backoff:
// server-side 5xx responses and transport-level failures.
func isRetryable(err error) bool {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// isStatus reports whether err carries the given upstream HTTP status.
func isStatus(err error, status int) bool {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == status
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode == status
	}
	return false
}

// mapError converts go-github error types into the shared taxonomy. Rate
// limit errors are handled by the retry loop before this point, but a
// fail-fast policy can still route them here.
func mapError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.RateLimitedError{ResetAt: rateErr.Rate.Reset.Time}
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case 404, 410:
			return domain.ErrNotFound
		default:
			return &domain.UpstreamError{
				StatusCode: respErr.Response.StatusCode,
				Body:       respErr.Message,
			}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return err
}
