package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestRetrySucceedsOnAttemptK(t *testing.T) {
	for k := 1; k <= 5; k++ {
		rec := &sleepRecorder{}
		policy := RetryPolicy{MaxRetries: 5, BaseTimeout: time.Second, Sleep: rec.sleep}

		calls := 0
		got, err := Retry(context.Background(), policy, newBreaker("test", 5), func(ctx context.Context) (int, error) {
			calls++
			if calls < k {
				return 0, errors.New("boom")
			}
			return calls, nil
		})
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if got != k {
			t.Fatalf("k=%d: expected payload of attempt %d, got %d", k, k, got)
		}
		if len(rec.waits) != k-1 {
			t.Fatalf("k=%d: expected %d sleeps, got %d", k, k-1, len(rec.waits))
		}
		for i, w := range rec.waits {
			want := time.Duration(1<<i) * time.Second
			if w != want {
				t.Fatalf("k=%d: sleep %d: expected %s, got %s", k, i, want, w)
			}
		}
	}
}

func TestRetryExhausted(t *testing.T) {
	rec := &sleepRecorder{}
	policy := RetryPolicy{MaxRetries: 3, BaseTimeout: time.Second, Sleep: rec.sleep}

	calls := 0
	_, err := Retry(context.Background(), policy, nil, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("unavailable")
	})

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", fetchErr.Attempts)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	if len(rec.waits) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(rec.waits))
	}
}

func TestRetryAttemptDeadlines(t *testing.T) {
	rec := &sleepRecorder{}
	policy := RetryPolicy{MaxRetries: 3, BaseTimeout: 10 * time.Second, Sleep: rec.sleep}

	var budgets []time.Duration
	_, _ = Retry(context.Background(), policy, nil, func(ctx context.Context) (int, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatalf("attempt context has no deadline")
		}
		budgets = append(budgets, time.Until(deadline))
		return 0, context.DeadlineExceeded
	})

	want := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second}
	if len(budgets) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(budgets))
	}
	for i := range want {
		// Allow for the time spent between creating the context and reading it.
		if budgets[i] > want[i] || budgets[i] < want[i]-time.Second {
			t.Fatalf("attempt %d: expected timeout close to %s, got %s", i, want[i], budgets[i])
		}
	}
}

func TestPolicySchedules(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, BaseTimeout: 10 * time.Second}

	timeouts := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second, 80 * time.Second, 160 * time.Second}
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	for i := 0; i < 5; i++ {
		if got := p.AttemptTimeout(i); got != timeouts[i] {
			t.Errorf("AttemptTimeout(%d) = %s, want %s", i, got, timeouts[i])
		}
		if got := p.Backoff(i); got != backoffs[i] {
			t.Errorf("Backoff(%d) = %s, want %s", i, got, backoffs[i])
		}
	}
}

func TestRetryInvalidPolicy(t *testing.T) {
	_, err := Retry(context.Background(), RetryPolicy{}, nil, func(ctx context.Context) (int, error) {
		t.Fatal("attempt should not run")
		return 0, nil
	})
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("expected errInvalidConfig, got %v", err)
	}
}
