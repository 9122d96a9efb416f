package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-forecast-ingest/internal/weather"
)

// DefaultForecastURL is the OpenWeatherMap 5 day / 3 hour forecast endpoint.
const DefaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

// OpenWeatherProvider fetches the short-term forecast for a fixed location
// from OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	units    string
	location weather.Location
	httpCfg  HTTPClientConfig
}

// OpenWeatherOptions configures an OpenWeatherProvider.
type OpenWeatherOptions struct {
	APIKey   string
	BaseURL  string
	Units    string
	Location weather.Location
	Retry    RetryPolicy
}

func NewOpenWeatherProvider(client *http.Client, opts OpenWeatherOptions) *OpenWeatherProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	units := opts.Units
	if units == "" {
		units = "metric"
	}

	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   opts.APIKey,
		baseURL:  baseURL,
		units:    units,
		location: opts.Location,
		httpCfg: HTTPClientConfig{
			Client: client,
			Retry:  opts.Retry,
		},
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// ForecastURL returns the request URL including the API key.
func (p *OpenWeatherProvider) ForecastURL() string {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(p.location.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(p.location.Lon, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	values.Set("units", p.units)
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

// FetchForecast retrieves the forecast with exponential backoff. It returns a
// *FetchError once every attempt has failed. The circuit breaker lives only
// for this call, so one failed run never short-circuits the next.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context) (weather.ForecastResponse, error) {
	if p.apiKey == "" {
		return weather.ForecastResponse{}, fmt.Errorf("openweather api key is not configured")
	}
	if p.httpCfg.Client == nil {
		return weather.ForecastResponse{}, errNoHTTPClient
	}

	u := p.ForecastURL()
	cb := newBreaker(p.name, p.httpCfg.Retry.MaxRetries)
	return Retry(ctx, p.httpCfg.Retry, cb, func(ctx context.Context) (weather.ForecastResponse, error) {
		return p.get(ctx, u)
	})
}

func (p *OpenWeatherProvider) get(ctx context.Context, u string) (weather.ForecastResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.ForecastResponse{}, err
	}

	resp, err := p.httpCfg.Client.Do(req)
	if err != nil {
		// Drop the URL from the error, it carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return weather.ForecastResponse{}, fmt.Errorf("request forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return weather.ForecastResponse{}, fmt.Errorf("%w: %d %s", errUnexpected, resp.StatusCode, body)
	}

	var payload weather.ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ForecastResponse{}, fmt.Errorf("decode forecast: %w", err)
	}
	return payload, nil
}
