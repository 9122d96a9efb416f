// Package app wires configuration, the forecast source and the warehouse
// into an ingest.Service. Every entry point builds its service through here.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/i474232898/weather-forecast-ingest/internal/config"
	"github.com/i474232898/weather-forecast-ingest/internal/ingest"
	"github.com/i474232898/weather-forecast-ingest/internal/store"
	"github.com/i474232898/weather-forecast-ingest/internal/weather/providers"
)

// NewService builds the pipeline described by cfg.
func NewService(cfg *config.AppConfig) (*ingest.Service, error) {
	open, err := Opener(cfg)
	if err != nil {
		return nil, err
	}

	// Per-attempt timeouts come from the retry policy, not the client.
	httpClient := &http.Client{}

	source := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherOptions{
		APIKey:   cfg.OpenWeatherAPIKey,
		BaseURL:  cfg.ForecastURL,
		Units:    cfg.Units,
		Location: cfg.Location(),
		Retry: providers.RetryPolicy{
			MaxRetries:  cfg.MaxRetries,
			BaseTimeout: cfg.BaseTimeout,
		},
	})

	return ingest.NewService(source, open, ingest.Options{
		TempDir:     cfg.TempDir,
		HistorySize: cfg.RunHistory,
	}), nil
}

// Opener returns a per-run warehouse constructor for the configured driver.
// Credentials are passed explicitly; nothing is read from process-wide state.
func Opener(cfg *config.AppConfig) (ingest.Opener, error) {
	table, err := store.ParseTableID(cfg.TableID)
	if err != nil {
		return nil, err
	}

	switch cfg.WarehouseDriver {
	case "bigquery":
		return func(ctx context.Context) (ingest.Warehouse, error) {
			return store.NewBigQueryWarehouse(ctx, table, cfg.CredentialsFile)
		}, nil
	case "postgres":
		return func(ctx context.Context) (ingest.Warehouse, error) {
			return store.NewPostgresWarehouse(ctx, cfg.DatabaseURL, table)
		}, nil
	case "memory":
		// Shared across runs so dedup has something to compare against.
		mem := store.NewMemoryWarehouse()
		return func(ctx context.Context) (ingest.Warehouse, error) {
			return mem, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown warehouse driver %q", cfg.WarehouseDriver)
	}
}

// RunOnce loads configuration and runs the pipeline a single time. Like
// ingest.Service.Run it always produces a Result, even when configuration
// is broken.
func RunOnce(ctx context.Context) ingest.Result {
	cfg, err := config.Load()
	if err != nil {
		return ingest.Result{Outcome: ingest.OutcomeFailed, Message: "Error: " + err.Error()}
	}
	svc, err := NewService(cfg)
	if err != nil {
		return ingest.Result{Outcome: ingest.OutcomeFailed, Message: "Error: " + err.Error()}
	}
	return svc.Run(ctx)
}
