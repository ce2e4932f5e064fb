package weather

import (
	"fmt"
	"time"
)

// Source tags identifying which provider served a result.
const (
	SourceOpenWeather = "openweathermap"
	SourceOpenMeteo   = "open-meteo"
)

// Wind speed units reported alongside forecast points.
const (
	UnitMetersPerSecond = "m/s"
	UnitKilometersPerHr = "km/h"
)

// Location is either a coordinate pair or a free-text place name.
// Coordinates take precedence when both are present.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// AtCoords builds a coordinate location.
func AtCoords(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// InCity builds a place-name location.
func InCity(city, country string) Location {
	return Location{City: city, Country: country}
}

// HasCoords reports whether both coordinates are set.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a human-readable key used in log fields.
func (l Location) Key() string {
	if l.HasCoords() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	if l.Country != "" {
		return l.City + ":" + l.Country
	}
	return l.City
}

// Place is the result of forward or reverse geocoding.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	State     string  `json:"state,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SynthesizedPlace names a coordinate pair when reverse geocoding is unavailable.
func SynthesizedPlace(lat, lon float64) Place {
	return Place{
		Name:      fmt.Sprintf("Location (%.2f, %.2f)", lat, lon),
		Latitude:  lat,
		Longitude: lon,
	}
}

// WeatherSnapshot is the unified current-conditions record. Every provider fills
// every field; numeric fields missing upstream are zero.
type WeatherSnapshot struct {
	Temperature int       `json:"temperature"`
	FeelsLike   int       `json:"feelsLike"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IconURL     string    `json:"iconUrl"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	WindSpeed   float64   `json:"windSpeed"`
	Visibility  int       `json:"visibility"` // km
	Timestamp   time.Time `json:"timestamp"`  // always UTC
	Source      string    `json:"source"`
}

// HourlyPoint is one step of the short-range forecast.
type HourlyPoint struct {
	Time          time.Time `json:"timestamp"`
	TimeLabel     string    `json:"timeLabel"`
	IsNow         bool      `json:"isNow"`
	Temperature   int       `json:"temperature"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	IconURL       string    `json:"iconUrl"`
	Humidity      int       `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
	WindSpeedUnit string    `json:"windSpeedUnit"`
	WindGust      *int      `json:"windGust"`
	WindDirection *int      `json:"windDirection"`
	Pressure      int       `json:"pressure"`
	Visibility    int       `json:"visibility"`
	CloudCover    *int      `json:"cloudCover"`
	DewPoint      *int      `json:"dewPoint"`
	UVIndex       *int      `json:"uvIndex"`
}

// DailyPoint summarizes one calendar day.
type DailyPoint struct {
	Date          time.Time `json:"dateTime"`
	Day           string    `json:"day"`
	Label         string    `json:"date"`
	High          int       `json:"high"`
	Low           int       `json:"low"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	IconURL       string    `json:"iconUrl"`
	Humidity      int       `json:"humidity"`
	WindSpeed     int       `json:"windSpeed"`
	WindSpeedUnit string    `json:"windSpeedUnit"`
	Pressure      int       `json:"pressure"`
}

// HistoricalDay is one day of archived observations.
type HistoricalDay struct {
	Date    string  `json:"date"`
	TempMax int     `json:"tempMax"`
	TempMin int     `json:"tempMin"`
	Precip  float64 `json:"precip"`
	WindMax int     `json:"windMax"`
}

// HourlyForecast is at most MaxHourlyPoints points, ascending by time.
type HourlyForecast struct {
	Source string        `json:"source"`
	Points []HourlyPoint `json:"points"`
}

// DailyForecast is at most MaxDailyPoints days, ascending by date.
type DailyForecast struct {
	Source string       `json:"source"`
	Days   []DailyPoint `json:"days"`
}

// ForecastSamples is the raw 3-hour, 5-day forecast of one provider.
type ForecastSamples struct {
	Source  string            `json:"source"`
	Samples []ProviderReading `json:"samples"`
}

// History covers the trailing window requested from the archive.
type History struct {
	Source string          `json:"source"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Days   []HistoricalDay `json:"days"`
}

const (
	MaxHourlyPoints = 8
	MaxDailyPoints  = 7
)

// IconURL returns the OpenWeatherMap artwork for an icon code.
func IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", code)
}
