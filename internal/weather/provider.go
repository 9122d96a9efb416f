package weather

import "context"

// ForecastSource abstracts where raw forecast slots come from
// (e.g. OpenWeatherMap).
type ForecastSource interface {
	Name() string
	FetchForecast(ctx context.Context) (ForecastResponse, error)
}
