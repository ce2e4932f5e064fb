package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/weather"
)

const (
	defaultOpenMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultOpenMeteoGeocodeURL  = "https://geocoding-api.open-meteo.com/v1"
	defaultOpenMeteoArchiveURL  = "https://archive-api.open-meteo.com/v1/era5"

	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,visibility,pressure_msl"
	hourlyFields  = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,pressure_msl,visibility,cloud_cover,dew_point_2m,uv_index,wind_gusts_10m,wind_direction_10m"
	dailyFields   = "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum,windspeed_10m_max,winddirection_10m_dominant"
	archiveFields = "temperature_2m_max,temperature_2m_min,precipitation_sum,windspeed_10m_max"
)

// OpenMeteoURLs overrides the Open-Meteo endpoints; empty fields select the public API.
type OpenMeteoURLs struct {
	Forecast string
	Geocode  string // base for /search and /reverse
	Archive  string
}

// OpenMeteoProvider implements weather.Provider and weather.Geocoder for Open-Meteo.
// It needs no credential.
type OpenMeteoProvider struct {
	name        string
	forecastURL string
	geocodeURL  string
	archiveURL  string
	transport   *Transport
	geoClient   *Transport
	now         func() time.Time
}

func NewOpenMeteoProvider(client *http.Client, urls OpenMeteoURLs) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:        weather.SourceOpenMeteo,
		forecastURL: orDefault(urls.Forecast, defaultOpenMeteoForecastURL),
		geocodeURL:  orDefault(urls.Geocode, defaultOpenMeteoGeocodeURL),
		archiveURL:  orDefault(urls.Archive, defaultOpenMeteoArchiveURL),
		transport:   NewTransport("openmeteo", client),
		geoClient:   NewTransport("openmeteo-geocoding", client),
		now:         time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Enabled() bool {
	return true
}

type omGeoResult struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
}

func (r omGeoResult) place() weather.Place {
	country := strings.ToUpper(r.CountryCode)
	if country == "" {
		country = r.Country
	}
	return weather.Place{
		Name:      r.Name,
		Country:   country,
		State:     r.Admin1,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// Geocode resolves a free-text place name to its first match.
func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string) (weather.Place, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")

	body, err := p.geoClient.Get(ctx, p.geocodeURL+"/search", values)
	if err != nil {
		return weather.Place{}, fmt.Errorf("location lookup failed: %w", err)
	}

	var payload struct {
		Results []omGeoResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Place{}, fmt.Errorf("decode geocoding: %w", err)
	}
	if len(payload.Results) == 0 {
		return weather.Place{}, weather.ErrCityNotFound
	}
	return payload.Results[0].place(), nil
}

// ReverseGeocode names a coordinate pair.
func (p *OpenMeteoProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (weather.Place, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("count", "1")

	body, err := p.geoClient.Get(ctx, p.geocodeURL+"/reverse", values)
	if err != nil {
		return weather.Place{}, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	var payload struct {
		Results []omGeoResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Place{}, fmt.Errorf("decode reverse geocoding: %w", err)
	}
	if len(payload.Results) == 0 {
		return weather.Place{}, fmt.Errorf("reverse geocoding: no result")
	}
	return payload.Results[0].place(), nil
}

// placeFor never fails: without a reverse geocoding result the name is built
// from the coordinates.
func (p *OpenMeteoProvider) placeFor(ctx context.Context, lat, lon float64) weather.Place {
	place, err := p.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.With("openmeteo").WithError(err).Warn("reverse geocoding failed, synthesizing place name")
		return weather.SynthesizedPlace(lat, lon)
	}
	return place
}

func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	var (
		lat, lon float64
		place    weather.Place
		named    bool
	)
	if loc.HasCoords() {
		lat, lon = *loc.Lat, *loc.Lon
	} else {
		found, err := p.Geocode(ctx, loc.City)
		if err != nil {
			return weather.WeatherSnapshot{}, err
		}
		lat, lon, place, named = found.Latitude, found.Longitude, found, true
	}

	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current", currentFields)
	values.Set("timezone", "auto")
	values.Set("wind_speed_unit", "ms")

	body, err := p.transport.Get(ctx, p.forecastURL, values)
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("weather fetch failed: %w", err)
	}

	var payload struct {
		Current *struct {
			Temperature         float64  `json:"temperature_2m"`
			ApparentTemperature float64  `json:"apparent_temperature"`
			RelativeHumidity    *float64 `json:"relative_humidity_2m"`
			WeatherCode         int      `json:"weather_code"`
			WindSpeed           *float64 `json:"wind_speed_10m"`
			Visibility          *float64 `json:"visibility"`
			PressureMSL         *float64 `json:"pressure_msl"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode current weather: %w", err)
	}
	cur := payload.Current
	if cur == nil {
		return weather.WeatherSnapshot{}, weather.ErrNoCurrentData
	}

	if !named {
		place = p.placeFor(ctx, lat, lon)
	}
	cond := MapWMOCode(cur.WeatherCode)

	snap := weather.WeatherSnapshot{
		Temperature: weather.Round(cur.Temperature),
		FeelsLike:   weather.Round(cur.ApparentTemperature),
		Humidity:    roundOrZero(cur.RelativeHumidity),
		Pressure:    roundOrZero(cur.PressureMSL),
		Description: cond.Description,
		Icon:        cond.Icon,
		IconURL:     weather.IconURL(cond.Icon),
		Location:    place.Name,
		Country:     place.Country,
		Timestamp:   p.now().UTC(),
		Source:      p.name,
	}
	if cur.WindSpeed != nil {
		snap.WindSpeed = *cur.WindSpeed
	}
	if cur.Visibility != nil {
		snap.Visibility = metersToKm(*cur.Visibility)
	}
	return snap, nil
}

func (p *OpenMeteoProvider) Hourly(ctx context.Context, lat, lon float64) ([]weather.HourlyPoint, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("hourly", hourlyFields)
	values.Set("timezone", "auto")
	values.Set("wind_speed_unit", "kmh")
	values.Set("forecast_days", "1")

	body, err := p.transport.Get(ctx, p.forecastURL, values)
	if err != nil {
		return nil, fmt.Errorf("open-meteo hourly forecast failed: %w", err)
	}

	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		Hourly           *struct {
			Time             []string   `json:"time"`
			Temperature      []*float64 `json:"temperature_2m"`
			RelativeHumidity []*float64 `json:"relative_humidity_2m"`
			WeatherCode      []*float64 `json:"weather_code"`
			WindSpeed        []*float64 `json:"wind_speed_10m"`
			PressureMSL      []*float64 `json:"pressure_msl"`
			Visibility       []*float64 `json:"visibility"`
			CloudCover       []*float64 `json:"cloud_cover"`
			DewPoint         []*float64 `json:"dew_point_2m"`
			UVIndex          []*float64 `json:"uv_index"`
			WindGusts        []*float64 `json:"wind_gusts_10m"`
			WindDirection    []*float64 `json:"wind_direction_10m"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode hourly forecast: %w", err)
	}
	h := payload.Hourly
	if h == nil {
		return nil, weather.ErrNoHourlyData
	}

	zone := time.FixedZone("", payload.UTCOffsetSeconds)
	now := p.now().In(zone)
	n := min(len(h.Time), weather.MaxHourlyPoints)
	points := make([]weather.HourlyPoint, 0, n)

	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation("2006-01-02T15:04", h.Time[i], zone)
		if err != nil {
			return nil, fmt.Errorf("parse hourly time %q: %w", h.Time[i], err)
		}
		cond := MapWMOCode(int(valueAt(h.WeatherCode, i)))

		points = append(points, weather.HourlyPoint{
			Time:          ts.UTC(),
			TimeLabel:     ts.Format("3:04 PM"),
			IsNow:         ts.Hour() == now.Hour(),
			Temperature:   weather.Round(valueAt(h.Temperature, i)),
			Description:   cond.Description,
			Icon:          cond.Icon,
			IconURL:       weather.IconURL(cond.Icon),
			Humidity:      weather.Round(valueAt(h.RelativeHumidity, i)),
			WindSpeed:     float64(weather.Round(valueAt(h.WindSpeed, i))),
			WindSpeedUnit: weather.UnitKilometersPerHr,
			WindGust:      roundedAt(h.WindGusts, i),
			WindDirection: roundedAt(h.WindDirection, i),
			Pressure:      weather.Round(valueAt(h.PressureMSL, i)),
			Visibility:    metersToKm(valueAt(h.Visibility, i)),
			CloudCover:    roundedAt(h.CloudCover, i),
			DewPoint:      roundedAt(h.DewPoint, i),
			UVIndex:       roundedAt(h.UVIndex, i),
		})
	}
	return points, nil
}

func (p *OpenMeteoProvider) Daily(ctx context.Context, lat, lon float64) ([]weather.DailyPoint, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("daily", dailyFields)
	values.Set("timezone", "auto")
	values.Set("wind_speed_unit", "kmh")
	values.Set("forecast_days", "7")

	body, err := p.transport.Get(ctx, p.forecastURL, values)
	if err != nil {
		return nil, fmt.Errorf("open-meteo 7-day forecast failed: %w", err)
	}

	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		Daily            *struct {
			Time           []string   `json:"time"`
			WeatherCode    []*float64 `json:"weathercode"`
			TemperatureMax []*float64 `json:"temperature_2m_max"`
			TemperatureMin []*float64 `json:"temperature_2m_min"`
			WindSpeedMax   []*float64 `json:"windspeed_10m_max"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode daily forecast: %w", err)
	}
	d := payload.Daily
	if d == nil {
		return nil, weather.ErrNoDailyData
	}

	zone := time.FixedZone("", payload.UTCOffsetSeconds)
	n := min(len(d.Time), weather.MaxDailyPoints)
	days := make([]weather.DailyPoint, 0, n)

	for i := 0; i < n; i++ {
		date, err := time.ParseInLocation(time.DateOnly, d.Time[i], zone)
		if err != nil {
			return nil, fmt.Errorf("parse daily date %q: %w", d.Time[i], err)
		}
		cond := MapWMOCode(int(valueAt(d.WeatherCode, i)))

		days = append(days, weather.DailyPoint{
			Date:        date,
			Day:         date.Weekday().String(),
			Label:       date.Format("Jan 2"),
			High:        weather.Round(valueAt(d.TemperatureMax, i)),
			Low:         weather.Round(valueAt(d.TemperatureMin, i)),
			Description: cond.Description,
			Icon:        cond.Icon,
			IconURL:     weather.IconURL(cond.Icon),
			// Humidity and pressure are not part of the daily block.
			WindSpeed:     weather.Round(valueAt(d.WindSpeedMax, i)),
			WindSpeedUnit: weather.UnitKilometersPerHr,
		})
	}
	return days, nil
}

// History reads the ERA5 archive for [from, to].
func (p *OpenMeteoProvider) History(ctx context.Context, lat, lon float64, from, to time.Time) ([]weather.HistoricalDay, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("start_date", from.Format(time.DateOnly))
	values.Set("end_date", to.Format(time.DateOnly))
	values.Set("daily", archiveFields)
	values.Set("timezone", "auto")
	values.Set("wind_speed_unit", "kmh")

	body, err := p.transport.Get(ctx, p.archiveURL, values)
	if err != nil {
		return nil, fmt.Errorf("historical API failed: %w", err)
	}

	var payload struct {
		Daily *struct {
			Time           []string   `json:"time"`
			TemperatureMax []*float64 `json:"temperature_2m_max"`
			TemperatureMin []*float64 `json:"temperature_2m_min"`
			Precipitation  []*float64 `json:"precipitation_sum"`
			WindSpeedMax   []*float64 `json:"windspeed_10m_max"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode historical data: %w", err)
	}
	d := payload.Daily
	if d == nil || d.Time == nil {
		return nil, weather.ErrNoHistoricalData
	}

	days := make([]weather.HistoricalDay, 0, len(d.Time))
	for i, date := range d.Time {
		days = append(days, weather.HistoricalDay{
			Date:    date,
			TempMax: weather.Round(valueAt(d.TemperatureMax, i)),
			TempMin: weather.Round(valueAt(d.TemperatureMin, i)),
			Precip:  weather.RoundTenth(valueAt(d.Precipitation, i)),
			WindMax: weather.Round(valueAt(d.WindSpeedMax, i)),
		})
	}
	return days, nil
}

// valueAt returns series[i], or 0 when the index is out of range or the value is null.
func valueAt(series []*float64, i int) float64 {
	if i < 0 || i >= len(series) || series[i] == nil {
		return 0
	}
	return *series[i]
}

// roundedAt returns the rounded series[i], or nil when absent.
func roundedAt(series []*float64, i int) *int {
	if i < 0 || i >= len(series) || series[i] == nil {
		return nil
	}
	v := weather.Round(*series[i])
	return &v
}

func roundOrZero(v *float64) int {
	if v == nil {
		return 0
	}
	return weather.Round(*v)
}
