package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-forecast-ingest/internal/weather"
)

// FieldType is the warehouse column type.
type FieldType string

const (
	TypeTimestamp FieldType = "TIMESTAMP"
	TypeDate      FieldType = "DATE"
	TypeTime      FieldType = "TIME"
	TypeString    FieldType = "STRING"
	TypeFloat     FieldType = "FLOAT"
	TypeInteger   FieldType = "INTEGER"
)

// Column is one schema field.
type Column struct {
	Name string
	Type FieldType
}

// Schema is the fixed column layout of the forecast table, in upload order.
var Schema = []Column{
	{"Datetime", TypeTimestamp},
	{"Date", TypeDate},
	{"Time", TypeTime},
	{"Day", TypeString},
	{"Temperature", TypeFloat},
	{"Feels_Like", TypeFloat},
	{"Temp_Min", TypeFloat},
	{"Temp_Max", TypeFloat},
	{"Humidity", TypeInteger},
	{"Pressure", TypeInteger},
	{"Wind_Speed", TypeFloat},
	{"Wind_Direction", TypeInteger},
	{"Weather", TypeString},
	{"Description", TypeString},
	{"Cloudiness", TypeInteger},
	{"Rain_3h", TypeFloat},
	{"Snow_3h", TypeFloat},
	{"Temp_Category", TypeString},
	{"Hour", TypeInteger},
	{"Time_Of_Day", TypeString},
}

// ColumnNames returns the schema column names in order.
func ColumnNames() []string {
	names := make([]string, len(Schema))
	for i, c := range Schema {
		names[i] = c.Name
	}
	return names
}

// TableID is a fully-qualified project.dataset.table identifier.
type TableID struct {
	Project string
	Dataset string
	Table   string
}

// ParseTableID splits a three-part table identifier.
func ParseTableID(s string) (TableID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return TableID{}, fmt.Errorf("table id %q must be project.dataset.table", s)
	}
	for _, p := range parts {
		if p == "" {
			return TableID{}, fmt.Errorf("table id %q has an empty part", s)
		}
	}
	return TableID{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
}

func (t TableID) String() string {
	return t.Project + "." + t.Dataset + "." + t.Table
}

// WriteCSV writes a header row followed by one row per entry, in Schema order.
func WriteCSV(w io.Writer, entries []weather.ForecastEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ColumnNames()); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(record(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(e weather.ForecastEntry) []string {
	return []string{
		e.Datetime,
		e.Date,
		e.Time,
		e.Day,
		formatFloat(e.Temperature),
		formatFloat(e.FeelsLike),
		formatFloat(e.TempMin),
		formatFloat(e.TempMax),
		strconv.Itoa(e.Humidity),
		strconv.Itoa(e.Pressure),
		formatFloat(e.WindSpeed),
		strconv.Itoa(e.WindDirection),
		e.Weather,
		e.Description,
		strconv.Itoa(e.Cloudiness),
		formatFloat(e.Rain3h),
		formatFloat(e.Snow3h),
		string(e.TempCategory),
		strconv.Itoa(e.Hour),
		string(e.TimeOfDay),
	}
}

// canonical renders a stored TIMESTAMP the way dt_txt spells it, so the
// dedup index matches incoming slots.
func canonical(t time.Time) string {
	return t.UTC().Format(weather.TimestampLayout)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
