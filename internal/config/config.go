package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-forecast-ingest/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey string  `validate:"required"`
	ForecastURL       string  `validate:"required,url"`
	Units             string  `validate:"oneof=standard metric imperial"`
	Lat               float64 `validate:"gte=-90,lte=90"`
	Lon               float64 `validate:"gte=-180,lte=180"`

	// Retry schedule for the forecast fetch.
	MaxRetries  int           `validate:"gte=1,lte=10"`
	BaseTimeout time.Duration `validate:"gt=0"`

	// Destination table.
	WarehouseDriver string `validate:"oneof=bigquery postgres memory"`
	TableID         string `validate:"required"`
	CredentialsFile string
	DatabaseURL     string `validate:"required_if=WarehouseDriver postgres"`

	TempDir string

	// ScheduleInterval controls how often the server runs the pipeline.
	ScheduleInterval time.Duration `validate:"gte=1m"`
	RunHistory       int           `validate:"gte=1"`

	// Manual trigger limiter.
	TriggerRate  float64 `validate:"gt=0"`
	TriggerBurst int     `validate:"gte=1"`

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.ForecastURL = getenvDefault("FORECAST_BASE_URL", "https://api.openweathermap.org/data/2.5/forecast")
	cfg.Units = getenvDefault("FORECAST_UNITS", "metric")

	var err error
	if cfg.Lat, err = getenvFloat("FORECAST_LAT", 11.016844); err != nil {
		return nil, err
	}
	if cfg.Lon, err = getenvFloat("FORECAST_LON", 76.955833); err != nil {
		return nil, err
	}

	cfg.MaxRetries = getenvInt("FETCH_MAX_RETRIES", 5)
	if cfg.BaseTimeout, err = getenvDuration("FETCH_BASE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.WarehouseDriver = getenvDefault("WAREHOUSE_DRIVER", "bigquery")
	cfg.TableID = getenvDefault("WAREHOUSE_TABLE_ID", "weatherpulseanalytics.weather_data.coimbatore_forecast")
	cfg.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TempDir = os.Getenv("TEMP_DIR")

	// Forecast slots are 3 hours apart.
	if cfg.ScheduleInterval, err = getenvDuration("SCHEDULE_INTERVAL", "3h"); err != nil {
		return nil, err
	}
	cfg.RunHistory = getenvInt("RUN_HISTORY", 20)

	if cfg.TriggerRate, err = getenvFloat("TRIGGER_RATE", 0.1); err != nil {
		return nil, err
	}
	cfg.TriggerBurst = getenvInt("TRIGGER_BURST", 1)
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Location returns the configured forecast point.
func (c *AppConfig) Location() weather.Location {
	return weather.Location{Lat: c.Lat, Lon: c.Lon}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
