package forecastingest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIngestForecastReturnsResultString(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ingestForecast(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.HasPrefix(string(body), "Error: ") {
		t.Fatalf("expected an error result string, got %q", body)
	}
}
