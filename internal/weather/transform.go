package weather

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-forecast-ingest/internal/common"
)

// Transform maps raw forecast items into enriched entries, preserving input
// order and skipping any item whose timestamp is already in existing.
func Transform(items []ForecastItem, existing TimestampSet) ([]ForecastEntry, error) {
	entries := make([]ForecastEntry, 0, len(items))
	for _, item := range items {
		if existing.Has(item.DtTxt) {
			continue
		}

		entry, err := newEntry(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func newEntry(item ForecastItem) (ForecastEntry, error) {
	dt, err := time.Parse(TimestampLayout, item.DtTxt)
	if err != nil {
		return ForecastEntry{}, fmt.Errorf("parse dt_txt %q: %w", item.DtTxt, err)
	}
	if len(item.Weather) == 0 {
		return ForecastEntry{}, fmt.Errorf("forecast slot %s has no weather condition", item.DtTxt)
	}

	var rain, snow float64
	if item.Rain != nil {
		rain = item.Rain.ThreeH
	}
	if item.Snow != nil {
		snow = item.Snow.ThreeH
	}

	temp := common.Round1(item.Main.Temp)
	hour := dt.Hour()

	return ForecastEntry{
		Datetime:      item.DtTxt,
		Date:          dt.Format(dateLayout),
		Time:          dt.Format(timeLayout),
		Day:           dt.Weekday().String(),
		Temperature:   temp,
		FeelsLike:     common.Round1(item.Main.FeelsLike),
		TempMin:       common.Round1(item.Main.TempMin),
		TempMax:       common.Round1(item.Main.TempMax),
		Humidity:      item.Main.Humidity,
		Pressure:      item.Main.Pressure,
		WindSpeed:     item.Wind.Speed,
		WindDirection: item.Wind.Deg,
		Weather:       item.Weather[0].Main,
		Description:   item.Weather[0].Description,
		Cloudiness:    item.Clouds.All,
		Rain3h:        rain,
		Snow3h:        snow,
		TempCategory:  TempCategoryFor(temp),
		Hour:          hour,
		TimeOfDay:     TimeOfDayFor(hour),
	}, nil
}

// TempCategoryFor buckets a (rounded) temperature.
func TempCategoryFor(temp float64) TempCategory {
	switch {
	case temp < 20:
		return TempCool
	case temp < 30:
		return TempModerate
	default:
		return TempHot
	}
}

// TimeOfDayFor buckets an hour in 0-23. Night wraps midnight.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}
