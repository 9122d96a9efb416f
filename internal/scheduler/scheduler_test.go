package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast-ingest/internal/ingest"
)

type chanRunner chan struct{}

func (c chanRunner) Run(ctx context.Context) ingest.Result {
	select {
	case c <- struct{}{}:
	default:
	}
	return ingest.Result{Outcome: ingest.OutcomeNothingToDo}
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runs := make(chanRunner, 1)
	s := New(time.Hour, runs)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("expected an immediate run")
	}
}
