package providers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-forecast-ingest/internal/common"
)

// RetryPolicy controls the exponential timeout and backoff schedules.
//
// Attempt i (0-based) runs with a timeout of BaseTimeout*2^i and, when it
// fails and is not the last one, is followed by a sleep of BaseDelay*2^i.
// All failures are treated alike: a 4xx is retried the same way as a 5xx or
// a timeout.
type RetryPolicy struct {
	MaxRetries  int
	BaseTimeout time.Duration
	BaseDelay   time.Duration

	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client *http.Client
	Retry  RetryPolicy
}

// FetchError is returned once every attempt has failed.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var (
	errUnexpected    = errors.New("unexpected status code")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid retry configuration")
)

// AttemptTimeout returns the timeout applied to attempt i.
func (p RetryPolicy) AttemptTimeout(i int) time.Duration {
	return p.BaseTimeout * time.Duration(math.Pow(2, float64(i)))
}

// Backoff returns the wait after a failed attempt i.
func (p RetryPolicy) Backoff(i int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	return base * time.Duration(math.Pow(2, float64(i)))
}

// newBreaker returns a circuit breaker for a single fetch. It trips only
// after maxRetries consecutive failures, that is on the last attempt, so it
// never shortens the retry schedule. Callers must not share it between
// fetches.
func newBreaker(name string, maxRetries int) *gobreaker.CircuitBreaker {
	threshold := uint32(maxRetries)
	if threshold == 0 {
		threshold = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("fetch: circuit %s %s -> %s", name, from, to)
		},
	})
}

// Retry runs attempt until it succeeds or policy.MaxRetries attempts have
// failed. Each attempt receives a context carrying its own deadline.
func Retry[T any](
	ctx context.Context,
	policy RetryPolicy,
	cb *gobreaker.CircuitBreaker,
	attempt func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if policy.MaxRetries <= 0 || policy.BaseTimeout <= 0 {
		return zero, errInvalidConfig
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for i := 0; i < policy.MaxRetries; i++ {
		timeout := policy.AttemptTimeout(i)
		log.Printf("fetch: attempt %d/%d with timeout %s", i+1, policy.MaxRetries, timeout)

		result, err := runAttempt(ctx, timeout, cb, attempt)
		if err == nil {
			log.Printf("fetch: retrieved forecast on attempt %d", i+1)
			return result, nil
		}
		lastErr = err

		if isTimeout(err) {
			log.Printf("fetch: attempt %d timed out after %s", i+1, timeout)
		} else {
			log.Printf("fetch: request failed on attempt %d: %v", i+1, err)
		}

		if i == policy.MaxRetries-1 {
			break
		}

		wait := policy.Backoff(i)
		log.Printf("fetch: waiting %s before retrying", wait)
		if err := sleep(ctx, wait); err != nil {
			return zero, &FetchError{Attempts: i + 1, Err: err}
		}
	}

	log.Printf("fetch: all %d attempts exhausted", policy.MaxRetries)
	return zero, &FetchError{Attempts: policy.MaxRetries, Err: lastErr}
}

func runAttempt[T any](
	ctx context.Context,
	timeout time.Duration,
	cb *gobreaker.CircuitBreaker,
	attempt func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if cb == nil {
		return attempt(attemptCtx)
	}

	// An open circuit counts as a failed attempt like any other error.
	out, err := cb.Execute(func() (interface{}, error) {
		return attempt(attemptCtx)
	})
	if err != nil {
		return zero, err
	}
	result, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return common.HasAny(err.Error(), "Client.Timeout", "deadline exceeded")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
