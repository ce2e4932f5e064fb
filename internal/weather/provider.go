package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupported is returned by a provider for an operation it does not serve.
	// The facade skips such providers without recording a failure.
	ErrUnsupported = errors.New("operation not supported by provider")

	ErrLocationRequired = errors.New("coordinates or city name required")
	ErrCoordsRequired   = errors.New("coordinates required")
	ErrCityNotFound     = errors.New("city not found")
	ErrNoCurrentData    = errors.New("no current weather data")
	ErrNoHourlyData     = errors.New("no hourly forecast data")
	ErrNoDailyData      = errors.New("no daily forecast data")
	ErrNoHistoricalData = errors.New("no historical daily data")
)

// ProviderReading is one raw forecast sample (3-hour step for OpenWeatherMap)
// before it is grouped into daily summaries.
type ProviderReading struct {
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
	WindSpeed    float64   `json:"windSpeed"` // m/s
	PressureHpa  float64   `json:"pressure"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
}

// SampleSource is implemented by providers that expose their raw forecast steps.
type SampleSource interface {
	Samples(ctx context.Context, lat, lon float64) ([]ProviderReading, error)
}

// Provider abstracts a weather data source (OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	// Enabled reports whether the provider can be attempted at all,
	// e.g. false when its credential is missing.
	Enabled() bool
	Current(ctx context.Context, loc Location) (WeatherSnapshot, error)
	Hourly(ctx context.Context, lat, lon float64) ([]HourlyPoint, error)
	Daily(ctx context.Context, lat, lon float64) ([]DailyPoint, error)
	History(ctx context.Context, lat, lon float64, from, to time.Time) ([]HistoricalDay, error)
}

// Geocoder resolves place names and coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Place, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}
