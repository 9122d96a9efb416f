package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-forecast-ingest/internal/store"
	"github.com/i474232898/weather-forecast-ingest/internal/weather"
)

// Outcome classifies a finished run.
type Outcome string

const (
	OutcomeUploaded    Outcome = "uploaded"
	OutcomeNothingToDo Outcome = "nothing_to_do"
	OutcomeFailed      Outcome = "failed"
)

// Result is the human-facing report of one run. Runs never return errors;
// failures are described in Message.
type Result struct {
	RunID      string    `json:"runId"`
	Outcome    Outcome   `json:"outcome"`
	Message    string    `json:"message"`
	Rows       int64     `json:"rows"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Options tunes a Service.
type Options struct {
	// TempDir is where the upload payload is staged; empty means os.TempDir.
	TempDir string
	// HistorySize bounds the number of results kept in memory.
	HistorySize int
}

// Opener connects to the destination warehouse. It is called once per run and
// the warehouse is closed when the run ends.
type Opener func(ctx context.Context) (Warehouse, error)

// Service runs the fetch, dedup, transform and upload pipeline.
type Service struct {
	mu sync.Mutex

	source  weather.ForecastSource
	open    Opener
	tempDir string
	history *History
	now     func() time.Time
}

// NewService creates a new Service.
func NewService(source weather.ForecastSource, open Opener, opts Options) *Service {
	return &Service{
		source:  source,
		open:    open,
		tempDir: opts.TempDir,
		history: NewHistory(opts.HistorySize),
		now:     time.Now,
	}
}

// History exposes the results of recent runs.
func (s *Service) History() *History {
	return s.history
}

// Run executes one ingestion cycle. It never panics and never returns an
// error: every failure is turned into a failed Result. Runs are serialised.
func (s *Service) Run(ctx context.Context) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res = Result{RunID: uuid.NewString(), StartedAt: s.now().UTC()}
	defer func() {
		if r := recover(); r != nil {
			res = failed(res, fmt.Errorf("panic: %v", r))
		}
		res.FinishedAt = s.now().UTC()
		log.Printf("ingest[%s]: %s", res.RunID, res.Message)
		s.history.Add(res)
	}()

	warehouse, err := s.open(ctx)
	if err != nil {
		return failed(res, fmt.Errorf("open warehouse: %w", err))
	}
	defer func() {
		if err := warehouse.Close(); err != nil {
			log.Printf("ingest[%s]: close %s: %v", res.RunID, warehouse.Describe(), err)
		}
	}()

	outcome, rows, err := s.run(ctx, res.RunID, warehouse)
	if err != nil {
		return failed(res, err)
	}

	res.Outcome = outcome
	res.Rows = rows
	switch outcome {
	case OutcomeNothingToDo:
		res.Message = "No new data to upload."
	default:
		res.Message = fmt.Sprintf("New weather data uploaded to %s successfully (%d rows).", warehouse.Describe(), rows)
	}
	return res
}

func failed(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Rows = 0
	res.Message = "Error: " + err.Error()
	return res
}

func (s *Service) run(ctx context.Context, runID string, warehouse Warehouse) (Outcome, int64, error) {
	log.Printf("ingest[%s]: fetching existing datetimes from %s", runID, warehouse.Describe())
	existing := LoadExistingTimestamps(ctx, warehouse)
	log.Printf("ingest[%s]: %d datetimes already stored", runID, len(existing))

	log.Printf("ingest[%s]: fetching forecast from %s", runID, s.source.Name())
	payload, err := s.source.FetchForecast(ctx)
	if err != nil {
		return OutcomeFailed, 0, err
	}

	entries, err := weather.Transform(payload.List, existing)
	if err != nil {
		return OutcomeFailed, 0, fmt.Errorf("transform forecast: %w", err)
	}
	log.Printf("ingest[%s]: %d of %d forecast slots are new", runID, len(entries), len(payload.List))

	if len(entries) == 0 {
		return OutcomeNothingToDo, 0, nil
	}

	rows, err := s.upload(ctx, runID, warehouse, entries)
	if err != nil {
		return OutcomeFailed, 0, err
	}
	return OutcomeUploaded, rows, nil
}

// upload stages entries in a temp CSV file and loads it. The file is removed
// whatever the outcome.
func (s *Service) upload(ctx context.Context, runID string, warehouse Warehouse, entries []weather.ForecastEntry) (int64, error) {
	f, err := os.CreateTemp(s.tempDir, "forecast-*.csv")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("ingest[%s]: failed to remove %s: %v", runID, f.Name(), err)
		}
	}()

	if err := store.WriteCSV(f, entries); err != nil {
		return 0, fmt.Errorf("write payload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind payload: %w", err)
	}

	rows, err := warehouse.Load(ctx, f)
	if err != nil {
		log.Printf("ingest[%s]: upload to %s failed: %v", runID, warehouse.Describe(), err)
		return 0, &UploadError{Destination: warehouse.Describe(), Err: err}
	}
	log.Printf("ingest[%s]: uploaded %d new rows to %s", runID, rows, warehouse.Describe())
	return rows, nil
}
