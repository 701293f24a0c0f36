package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across all operations. Callers are expected to
// test with errors.Is / errors.As rather than matching message strings.
var (
	// ErrNotFound indicates the requested repository, user, issue, or pull
	// request does not exist or is not visible with the current credentials.
	ErrNotFound = errors.New("resource not found")

	// ErrTimeout indicates an operation exceeded its caller-supplied deadline.
	ErrTimeout = errors.New("operation timed out")
)

// RateLimitedError indicates the GitHub API rate limit was exhausted and the
// configured policy chose to surface it instead of waiting for the reset.
type RateLimitedError struct {
	// ResetAt is the instant the quota window is expected to renew.
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// RetryAfter reports how long the caller would need to wait from now until
// the quota window resets. It never returns a negative duration.
func (e *RateLimitedError) RetryAfter(now time.Time) time.Duration {
	d := e.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// UpstreamError indicates GitHub rejected a request for a reason other than
// rate limiting or a missing resource, for example a 422 on a malformed
// search query or a persistent 5xx after retries were exhausted.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("github rejected request with status %d", e.StatusCode)
	}
	return fmt.Sprintf("github rejected request with status %d: %s", e.StatusCode, e.Body)
}

// InvalidInputError indicates a request was rejected locally, before any
// network call, because an argument failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
