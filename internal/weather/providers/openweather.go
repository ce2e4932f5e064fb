package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-news-aggregation/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// IsPlaceholderKey reports whether key is empty or one of the sample values
// shipped in example configuration.
func IsPlaceholderKey(key string) bool {
	v := strings.TrimSpace(key)
	return v == "" ||
		v == "your_api_key_here" ||
		v == "YOUR_OPENWEATHERMAP_API_KEY" ||
		strings.Contains(strings.ToLower(v), "your")
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name      string
	apiKey    string
	baseURL   string
	transport *Transport
	now       func() time.Time
}

// NewOpenWeatherProvider creates the primary provider. An empty baseURL selects the public API.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:      weather.SourceOpenWeather,
		apiKey:    apiKey,
		baseURL:   orDefault(baseURL, defaultOpenWeatherBaseURL),
		transport: NewTransport("openweather", client),
		now:       time.Now,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Enabled is false when the credential is missing or a placeholder; the facade
// then never contacts this provider.
func (p *OpenWeatherProvider) Enabled() bool {
	return !IsPlaceholderKey(p.apiKey)
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type owmWind struct {
	Speed float64  `json:"speed"`
	Gust  *float64 `json:"gust"`
	Deg   *float64 `json:"deg"`
}

func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}

func metersToKm(m float64) int {
	if m <= 0 {
		return 0
	}
	return weather.Round(m / 1000)
}

func (p *OpenWeatherProvider) params(extra url.Values) url.Values {
	values := url.Values{}
	for k, v := range extra {
		values[k] = v
	}
	values.Set("units", "metric")
	values.Set("appid", p.apiKey)
	return values
}

func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	values := url.Values{}
	if loc.HasCoords() {
		values.Set("lat", formatCoord(*loc.Lat))
		values.Set("lon", formatCoord(*loc.Lon))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}

	body, err := p.transport.Get(ctx, p.baseURL+"/weather", p.params(values))
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("weather fetch failed: %w", err)
	}

	var payload struct {
		Name       string         `json:"name"`
		Main       *owmMain       `json:"main"`
		Weather    []owmCondition `json:"weather"`
		Wind       *owmWind       `json:"wind"`
		Visibility float64        `json:"visibility"`
		Sys        struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode current weather: %w", err)
	}
	if payload.Main == nil {
		return weather.WeatherSnapshot{}, weather.ErrNoCurrentData
	}

	cond := firstCondition(payload.Weather)
	name := payload.Name
	if name == "" {
		name = "Current Location"
	}
	var wind float64
	if payload.Wind != nil {
		wind = payload.Wind.Speed
	}

	return weather.WeatherSnapshot{
		Temperature: weather.Round(payload.Main.Temp),
		FeelsLike:   weather.Round(payload.Main.FeelsLike),
		Humidity:    int(payload.Main.Humidity),
		Pressure:    int(payload.Main.Pressure),
		Description: cond.Description,
		Icon:        cond.Icon,
		IconURL:     weather.IconURL(cond.Icon),
		Location:    name,
		Country:     payload.Sys.Country,
		WindSpeed:   wind,
		Visibility:  metersToKm(payload.Visibility),
		Timestamp:   p.now().UTC(),
		Source:      p.name,
	}, nil
}

type owmForecast struct {
	List []struct {
		Dt         int64          `json:"dt"`
		Main       owmMain        `json:"main"`
		Weather    []owmCondition `json:"weather"`
		Wind       *owmWind       `json:"wind"`
		Visibility float64        `json:"visibility"`
		Clouds     *struct {
			All *float64 `json:"all"`
		} `json:"clouds"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"` // seconds east of UTC
	} `json:"city"`
}

func (p *OpenWeatherProvider) forecast(ctx context.Context, lat, lon float64) (owmForecast, *time.Location, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))

	body, err := p.transport.Get(ctx, p.baseURL+"/forecast", p.params(values))
	if err != nil {
		return owmForecast{}, nil, fmt.Errorf("forecast fetch failed: %w", err)
	}

	var payload owmForecast
	if err := json.Unmarshal(body, &payload); err != nil {
		return owmForecast{}, nil, fmt.Errorf("decode forecast: %w", err)
	}
	zone := time.FixedZone("", payload.City.Timezone)
	return payload, zone, nil
}

// Hourly returns the first eight 3-hour samples (roughly 24 hours).
func (p *OpenWeatherProvider) Hourly(ctx context.Context, lat, lon float64) ([]weather.HourlyPoint, error) {
	payload, zone, err := p.forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, weather.ErrNoHourlyData
	}

	now := p.now().In(zone)
	n := min(len(payload.List), weather.MaxHourlyPoints)
	points := make([]weather.HourlyPoint, 0, n)

	for _, item := range payload.List[:n] {
		ts := time.Unix(item.Dt, 0).In(zone)
		cond := firstCondition(item.Weather)

		point := weather.HourlyPoint{
			Time:          ts.UTC(),
			TimeLabel:     ts.Format("3:04 PM"),
			IsNow:         ts.Hour() == now.Hour(),
			Temperature:   weather.Round(item.Main.Temp),
			Description:   cond.Description,
			Icon:          cond.Icon,
			IconURL:       weather.IconURL(cond.Icon),
			Humidity:      int(item.Main.Humidity),
			WindSpeedUnit: weather.UnitMetersPerSecond,
			Pressure:      int(item.Main.Pressure),
			Visibility:    metersToKm(item.Visibility),
		}
		if item.Wind != nil {
			point.WindSpeed = item.Wind.Speed
			if item.Wind.Gust != nil {
				g := weather.Round(*item.Wind.Gust)
				point.WindGust = &g
			}
			if item.Wind.Deg != nil {
				d := int(*item.Wind.Deg)
				point.WindDirection = &d
			}
		}
		if item.Clouds != nil && item.Clouds.All != nil {
			c := int(*item.Clouds.All)
			point.CloudCover = &c
		}
		points = append(points, point)
	}
	return points, nil
}

// Daily groups the 3-hour samples by local calendar date.
func (p *OpenWeatherProvider) Daily(ctx context.Context, lat, lon float64) ([]weather.DailyPoint, error) {
	payload, zone, err := p.forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, weather.ErrNoDailyData
	}
	return weather.GroupDaily(payload.readings(), zone, weather.MaxDailyPoints), nil
}

// Samples returns the 3-hour steps of the 5-day forecast as reported.
func (p *OpenWeatherProvider) Samples(ctx context.Context, lat, lon float64) ([]weather.ProviderReading, error) {
	payload, _, err := p.forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, weather.ErrNoHourlyData
	}
	return payload.readings(), nil
}

func (f owmForecast) readings() []weather.ProviderReading {
	readings := make([]weather.ProviderReading, 0, len(f.List))
	for _, item := range f.List {
		cond := firstCondition(item.Weather)
		r := weather.ProviderReading{
			Timestamp:    time.Unix(item.Dt, 0).UTC(),
			TemperatureC: item.Main.Temp,
			HumidityPct:  item.Main.Humidity,
			PressureHpa:  item.Main.Pressure,
			Description:  cond.Description,
			Icon:         cond.Icon,
		}
		if item.Wind != nil {
			r.WindSpeed = item.Wind.Speed
		}
		readings = append(readings, r)
	}
	return readings
}

// History is served by the archive provider only.
func (p *OpenWeatherProvider) History(context.Context, float64, float64, time.Time, time.Time) ([]weather.HistoricalDay, error) {
	return nil, weather.ErrUnsupported
}
