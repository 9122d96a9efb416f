package weather

// TimestampLayout is the canonical timestamp format used by the forecast API
// (dt_txt) and as the natural key of stored rows.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// TempCategory buckets a temperature reading.
type TempCategory string

const (
	TempCool     TempCategory = "Cool"
	TempModerate TempCategory = "Moderate"
	TempHot      TempCategory = "Hot"
)

// TimeOfDay buckets an hour of the day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
	Night     TimeOfDay = "Night"
)

// Location is the fixed point the forecast is requested for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ForecastResponse is the subset of the OpenWeatherMap 5 day / 3 hour
// forecast payload we consume.
type ForecastResponse struct {
	List []ForecastItem `json:"list"`
}

// ForecastItem is one 3-hour slot as returned by the API.
type ForecastItem struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	// Rain and Snow are absent when there is no precipitation.
	Rain *Precipitation `json:"rain,omitempty"`
	Snow *Precipitation `json:"snow,omitempty"`
}

// Precipitation holds the volume for the last 3 hours, in mm.
type Precipitation struct {
	ThreeH float64 `json:"3h"`
}

// ForecastEntry is an enriched forecast slot ready to be written to the
// warehouse. Datetime is the natural key.
type ForecastEntry struct {
	Datetime      string
	Date          string
	Time          string
	Day           string
	Temperature   float64
	FeelsLike     float64
	TempMin       float64
	TempMax       float64
	Humidity      int
	Pressure      int
	WindSpeed     float64
	WindDirection int
	Weather       string
	Description   string
	Cloudiness    int
	Rain3h        float64
	Snow3h        float64
	TempCategory  TempCategory
	Hour          int
	TimeOfDay     TimeOfDay
}

// TimestampSet is a snapshot of canonical timestamps already present in the
// warehouse.
type TimestampSet map[string]struct{}

// NewTimestampSet builds a set from the given timestamps.
func NewTimestampSet(ts ...string) TimestampSet {
	set := make(TimestampSet, len(ts))
	for _, t := range ts {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether ts is in the set. A nil set contains nothing.
func (s TimestampSet) Has(ts string) bool {
	_, ok := s[ts]
	return ok
}
