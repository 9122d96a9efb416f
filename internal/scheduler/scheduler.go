package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-forecast-ingest/internal/ingest"
)

// Runner is the part of ingest.Service the scheduler needs.
type Runner interface {
	Run(ctx context.Context) ingest.Result
}

// Scheduler periodically runs the ingestion pipeline.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, runner Runner) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// A run still in progress when the next tick fires is not overlapped.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval < time.Minute {
		interval = 3 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Println("scheduler: running forecast ingestion job")
		res := s.runner.Run(context.Background())
		log.Printf("scheduler: job finished with outcome %s", res.Outcome)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// NextRun reports when the job fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
