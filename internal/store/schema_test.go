package store

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast-ingest/internal/weather"
)

func sampleEntry(dt string) weather.ForecastEntry {
	return weather.ForecastEntry{
		Datetime:      dt,
		Date:          "2024-01-01",
		Time:          "03:00:00",
		Day:           "Monday",
		Temperature:   19.9,
		FeelsLike:     19.6,
		TempMin:       19.9,
		TempMax:       20,
		Humidity:      85,
		Pressure:      1011,
		WindSpeed:     1.2,
		WindDirection: 80,
		Weather:       "Rain",
		Description:   "light rain, heavy at times",
		Cloudiness:    90,
		Rain3h:        0.42,
		Snow3h:        0,
		TempCategory:  weather.TempCool,
		Hour:          3,
		TimeOfDay:     weather.Night,
	}
}

func TestSchemaHasTwentyColumns(t *testing.T) {
	if len(Schema) != 20 {
		t.Fatalf("expected 20 columns, got %d", len(Schema))
	}
	if Schema[0].Name != "Datetime" || Schema[0].Type != TypeTimestamp {
		t.Fatalf("unexpected first column %+v", Schema[0])
	}
	if Schema[19].Name != "Time_Of_Day" || Schema[19].Type != TypeString {
		t.Fatalf("unexpected last column %+v", Schema[19])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []weather.ForecastEntry{sampleEntry("2024-01-01 03:00:00")}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(ColumnNames(), ",") {
		t.Fatalf("unexpected header %q", lines[0])
	}

	want := `2024-01-01 03:00:00,2024-01-01,03:00:00,Monday,19.9,19.6,19.9,20,85,1011,1.2,80,Rain,"light rain, heavy at times",90,0.42,0,Cool,3,Night`
	if lines[1] != want {
		t.Fatalf("unexpected row\n got %s\nwant %s", lines[1], want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestParseTableID(t *testing.T) {
	id, err := ParseTableID("weatherpulseanalytics.weather_data.coimbatore_forecast")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Project != "weatherpulseanalytics" || id.Dataset != "weather_data" || id.Table != "coimbatore_forecast" {
		t.Fatalf("unexpected id %+v", id)
	}
	if id.String() != "weatherpulseanalytics.weather_data.coimbatore_forecast" {
		t.Fatalf("unexpected String() %s", id)
	}

	for _, bad := range []string{"", "a.b", "a.b.c.d", "a..c"} {
		if _, err := ParseTableID(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestQuotedColumns(t *testing.T) {
	got := quotedColumns()
	if !strings.HasPrefix(got, `"Datetime", "Date", "Time"`) {
		t.Fatalf("unexpected column list %s", got)
	}
	for _, c := range Schema {
		if _, ok := postgresTypes[c.Type]; !ok {
			t.Fatalf("no postgres type for %s", c.Type)
		}
	}
}

func TestCanonicalTimestamp(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc", time.Date(2024, 1, 6, 15, 0, 0, 0, time.UTC), "2024-01-06 15:00:00"},
		{"offset converted to utc", time.Date(2024, 1, 6, 20, 30, 0, 0, ist), "2024-01-06 15:00:00"},
		{"sub-second dropped", time.Date(2024, 1, 6, 15, 0, 0, 500, time.UTC), "2024-01-06 15:00:00"},
		{"midnight", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2024-12-31 00:00:00"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := canonical(c.in); got != c.want {
				t.Fatalf("canonical() = %s, want %s", got, c.want)
			}
		})
	}

	// Round trip with the layout incoming slots use.
	parsed, err := time.Parse(weather.TimestampLayout, "2024-01-01 03:00:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := canonical(parsed); got != "2024-01-01 03:00:00" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}
