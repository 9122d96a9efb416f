package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast-ingest/internal/config"
	"github.com/i474232898/weather-forecast-ingest/internal/ingest"
)

const fixture = `{"list": [
  {"dt_txt": "2024-01-01 00:00:00", "main": {"temp": 22.1}, "weather": [{"main": "Clear", "description": "clear sky"}]},
  {"dt_txt": "2024-01-01 03:00:00", "main": {"temp": 21.4}, "weather": [{"main": "Clear", "description": "clear sky"}]}
]}`

func memoryConfig(t *testing.T, url string) *config.AppConfig {
	return &config.AppConfig{
		OpenWeatherAPIKey: "key",
		ForecastURL:       url,
		Units:             "metric",
		MaxRetries:        1,
		BaseTimeout:       5 * time.Second,
		WarehouseDriver:   "memory",
		TableID:           "local.weather_data.forecast",
		TempDir:           t.TempDir(),
		RunHistory:        5,
	}
}

func TestMemoryPipelineEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	svc, err := NewService(memoryConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	first := svc.Run(context.Background())
	if first.Outcome != ingest.OutcomeUploaded || first.Rows != 2 {
		t.Fatalf("expected 2 rows uploaded, got %+v", first)
	}

	second := svc.Run(context.Background())
	if second.Outcome != ingest.OutcomeNothingToDo {
		t.Fatalf("expected nothing to do on rerun, got %+v", second)
	}
}

func TestOpenerRejectsBadTableID(t *testing.T) {
	cfg := memoryConfig(t, "http://example.invalid")
	cfg.TableID = "just_a_table"

	if _, err := Opener(cfg); err == nil || !strings.Contains(err.Error(), "project.dataset.table") {
		t.Fatalf("expected table id error, got %v", err)
	}
}

func TestRunOnceReportsConfigErrors(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	res := RunOnce(context.Background())
	if res.Outcome != ingest.OutcomeFailed || !strings.HasPrefix(res.Message, "Error: ") {
		t.Fatalf("expected config failure result, got %+v", res)
	}
}
