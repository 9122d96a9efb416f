// Package forecastingest exposes the forecast pipeline as a Cloud Functions
// HTTP function.
package forecastingest

import (
	"fmt"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/i474232898/weather-forecast-ingest/internal/app"
)

func init() {
	functions.HTTP("IngestForecast", ingestForecast)
}

// ingestForecast runs the pipeline once per request and writes the result
// message. The status is 200 for every outcome.
func ingestForecast(w http.ResponseWriter, r *http.Request) {
	res := app.RunOnce(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, res.Message)
}
