package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryableError marks a transient failure: a dropped connection, a 5xx or a
// 429 from the API. After is the minimum wait the server asked for through a
// Retry-After header, or zero.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy controls how many times [Policy.Do] calls a function and how long it
// waits in between.
type Policy struct {
	Attempts int
	Delay    time.Duration // first wait, doubled after each failure
	MaxDelay time.Duration // upper bound on any single wait; 0 means none
}

// DefaultPolicy makes three attempts starting at one second and never waits
// longer than 30 seconds, even when the API asks for more.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Do calls fn until it succeeds, returns an error that is not a
// [RetryableError], or the attempts run out. The wait before the next attempt
// is the larger of the backoff delay and the error's After hint.
// It returns the last error, or ctx.Err() if ctx is done while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(p.bound(max(delay, re.After)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}

func (p Policy) bound(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retry calls fn up to attempts times, doubling delay after each retryable
// failure. It has no upper bound on the wait.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff runs fn under [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}

// ParseRetryAfter reads a Retry-After header, given either in seconds or as
// an HTTP date relative to now. Missing, malformed and past values yield 0.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(value); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}
