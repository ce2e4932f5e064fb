package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-aggregation/internal/weather"
)

type openMeteoFake struct {
	mu      sync.Mutex
	routes  map[string]string
	queries map[string]url.Values
}

func (f *openMeteoFake) query(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func (f *openMeteoFake) called(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.queries[path]
	return ok
}

func newOpenMeteo(t *testing.T, routes map[string]string) (*OpenMeteoProvider, *openMeteoFake) {
	t.Helper()
	fake := &openMeteoFake{routes: routes, queries: map[string]url.Values{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.queries[r.URL.Path] = r.URL.Query()
		fake.mu.Unlock()
		body, ok := fake.routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	p := NewOpenMeteoProvider(srv.Client(), OpenMeteoURLs{
		Forecast: srv.URL + "/v1/forecast",
		Geocode:  srv.URL + "/geo",
		Archive:  srv.URL + "/v1/era5",
	})
	return p, fake
}

func TestMapWMOCode(t *testing.T) {
	assert.Equal(t, Condition{"clear sky", "01d"}, MapWMOCode(0))
	assert.Equal(t, Condition{"fog", "50d"}, MapWMOCode(48))
	assert.Equal(t, Condition{"rain showers", "09d"}, MapWMOCode(81))
	assert.Equal(t, Condition{"thunderstorm with hail", "11d"}, MapWMOCode(99))
	assert.Equal(t, Condition{"unknown", "03d"}, MapWMOCode(42))
}

func TestOpenMeteoCurrentByCoordsSynthesizesPlace(t *testing.T) {
	p, fake := newOpenMeteo(t, map[string]string{
		"/v1/forecast": `{"current": {"temperature_2m": 11.5, "apparent_temperature": 9.2, "relative_humidity_2m": 77, "weather_code": 61, "wind_speed_10m": 3.4, "visibility": 24140, "pressure_msl": 1013.6}}`,
	})

	snap, err := p.Current(context.Background(), weather.AtCoords(51.5074, -0.1278))
	require.NoError(t, err)

	q := fake.query("/v1/forecast")
	assert.Equal(t, currentFields, q.Get("current"))
	assert.Equal(t, "auto", q.Get("timezone"))
	assert.Equal(t, "ms", q.Get("wind_speed_unit"))
	assert.True(t, fake.called("/geo/reverse"))

	assert.Equal(t, 12, snap.Temperature)
	assert.Equal(t, 9, snap.FeelsLike)
	assert.Equal(t, 77, snap.Humidity)
	assert.Equal(t, 1014, snap.Pressure)
	assert.Equal(t, "rain", snap.Description)
	assert.Equal(t, "10d", snap.Icon)
	assert.Equal(t, 3.4, snap.WindSpeed)
	assert.Equal(t, 24, snap.Visibility)
	assert.Equal(t, "Location (51.51, -0.13)", snap.Location)
	assert.Empty(t, snap.Country)
	assert.Equal(t, weather.SourceOpenMeteo, snap.Source)
}

func TestOpenMeteoCurrentByCoordsUsesReverseGeocoding(t *testing.T) {
	p, _ := newOpenMeteo(t, map[string]string{
		"/v1/forecast": `{"current": {"temperature_2m": 1, "apparent_temperature": 1, "weather_code": 3}}`,
		"/geo/reverse": `{"results": [{"name": "Bergen", "country": "Norway", "country_code": "no", "admin1": "Vestland"}]}`,
	})

	snap, err := p.Current(context.Background(), weather.AtCoords(60.39, 5.32))
	require.NoError(t, err)
	assert.Equal(t, "Bergen", snap.Location)
	assert.Equal(t, "NO", snap.Country)
}

func TestOpenMeteoCurrentDefaultsMissingFields(t *testing.T) {
	p, _ := newOpenMeteo(t, map[string]string{
		"/v1/forecast": `{"current": {"temperature_2m": -3.5, "apparent_temperature": -7.6, "weather_code": 71}}`,
	})

	snap, err := p.Current(context.Background(), weather.AtCoords(1, 1))
	require.NoError(t, err)
	assert.Equal(t, -3, snap.Temperature)
	assert.Equal(t, -8, snap.FeelsLike)
	assert.Zero(t, snap.Humidity)
	assert.Zero(t, snap.Pressure)
	assert.Zero(t, snap.WindSpeed)
	assert.Zero(t, snap.Visibility)
	assert.Equal(t, "snow", snap.Description)
}

func TestOpenMeteoCurrentByCity(t *testing.T) {
	p, fake := newOpenMeteo(t, map[string]string{
		"/geo/search":  `{"results": [{"name": "Berlin", "latitude": 52.52, "longitude": 13.41, "country": "Germany", "country_code": "de"}]}`,
		"/v1/forecast": `{"current": {"temperature_2m": 20, "apparent_temperature": 19, "weather_code": 0}}`,
	})

	snap, err := p.Current(context.Background(), weather.InCity("Berlin", ""))
	require.NoError(t, err)

	assert.Equal(t, "Berlin", fake.query("/geo/search").Get("name"))
	assert.Equal(t, "1", fake.query("/geo/search").Get("count"))
	assert.Equal(t, "52.52", fake.query("/v1/forecast").Get("latitude"))
	assert.False(t, fake.called("/geo/reverse"))
	assert.Equal(t, "Berlin", snap.Location)
	assert.Equal(t, "DE", snap.Country)
}

func TestOpenMeteoCityNotFound(t *testing.T) {
	p, _ := newOpenMeteo(t, map[string]string{"/geo/search": `{}`})

	_, err := p.Current(context.Background(), weather.InCity("Atlantis", ""))
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestOpenMeteoNoCurrentData(t *testing.T) {
	p, _ := newOpenMeteo(t, map[string]string{"/v1/forecast": `{"latitude": 1}`})

	_, err := p.Current(context.Background(), weather.AtCoords(1, 1))
	assert.ErrorIs(t, err, weather.ErrNoCurrentData)
}

func TestOpenMeteoHourly(t *testing.T) {
	p, fake := newOpenMeteo(t, map[string]string{
		"/v1/forecast": `{
			"utc_offset_seconds": 3600,
			"hourly": {
				"time": ["2024-07-01T00:00","2024-07-01T01:00","2024-07-01T02:00","2024-07-01T03:00","2024-07-01T04:00","2024-07-01T05:00","2024-07-01T06:00","2024-07-01T07:00","2024-07-01T08:00"],
				"temperature_2m": [18.4, 18.1, 17.6, 17.2, 16.9, 17.5, 18.8, 20.1, 21.7],
				"relative_humidity_2m": [80, 82, 84, 85, 86, 84, 78, 70, 65],
				"weather_code": [0, 1, 2, 3, 45, 61, 80, 95, 0],
				"wind_speed_10m": [7.6, 7.2, 6.8, 6.1, 5.5, 5.9, 8.3, 10.4, 12.2],
				"pressure_msl": [1015.2, 1015.0, 1014.7, 1014.6, 1014.9, 1015.3, 1015.8, 1016.1, 1016.4],
				"visibility": [24140, 24140, 20000, 0, 1500, 24140, 24140, 24140, 24140],
				"cloud_cover": [0, 10, 45, 100, 100, 80, 60, 40, 20],
				"dew_point_2m": [15.0, null, 15.1, 14.9, 14.6, 14.7, 14.9, 14.5, 14.8],
				"uv_index": [0, 0, 0, 0, 0, 0.15, 0.9, 2.2, 3.6],
				"wind_gusts_10m": [14.4, 13.7, 12.6, 11.5, 10.8, 11.9, 16.2, 20.5, 24.1],
				"wind_direction_10m": [250, 248, 245, 240, 238, 236, 240, 245, 252]
			}
		}`,
	})
	p.now = func() time.Time { return time.Date(2024, 7, 1, 1, 10, 0, 0, time.UTC) } // 02:10 local

	points, err := p.Hourly(context.Background(), 48.85, 2.35)
	require.NoError(t, err)
	require.Len(t, points, weather.MaxHourlyPoints)

	q := fake.query("/v1/forecast")
	assert.Equal(t, hourlyFields, q.Get("hourly"))
	assert.Equal(t, "kmh", q.Get("wind_speed_unit"))
	assert.Equal(t, "1", q.Get("forecast_days"))

	first := points[0]
	assert.True(t, first.Time.Equal(time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12:00 AM", first.TimeLabel)
	assert.Equal(t, 18, first.Temperature)
	assert.Equal(t, "clear sky", first.Description)
	assert.Equal(t, 8.0, first.WindSpeed)
	assert.Equal(t, weather.UnitKilometersPerHr, first.WindSpeedUnit)
	assert.Equal(t, 1015, first.Pressure)
	assert.Equal(t, 24, first.Visibility)
	require.NotNil(t, first.DewPoint)
	assert.Equal(t, 15, *first.DewPoint)

	assert.Nil(t, points[1].DewPoint)
	assert.True(t, points[2].IsNow)
	assert.Zero(t, points[3].Visibility)
	assert.Equal(t, "fog", points[4].Description)
	require.NotNil(t, points[7].UVIndex)
	assert.Equal(t, 2, *points[7].UVIndex)
}

func TestOpenMeteoHourlyMissingBlock(t *testing.T) {
	p, _ := newOpenMeteo(t, map[string]string{"/v1/forecast": `{}`})
	_, err := p.Hourly(context.Background(), 1, 1)
	assert.ErrorIs(t, err, weather.ErrNoHourlyData)
}

func TestOpenMeteoDaily(t *testing.T) {
	p, fake := newOpenMeteo(t, map[string]string{
		"/v1/forecast": `{
			"utc_offset_seconds": 0,
			"daily": {
				"time": ["2024-07-01","2024-07-02","2024-07-03","2024-07-04","2024-07-05","2024-07-06","2024-07-07","2024-07-08"],
				"weathercode": [3, 61, 0, 2, 95, 71, 45, 0],
				"temperature_2m_max": [24.6, 21.2, 26.5, 27.9, 22.4, 3.1, 19.5, 25.0],
				"temperature_2m_min": [14.4, 13.8, 15.5, 17.0, 16.2, -2.4, 12.1, 14.0],
				"windspeed_10m_max": [18.7, 25.3, 10.1, 12.9, 31.5, 20.0, 8.4, 9.9]
			}
		}`,
	})

	days, err := p.Daily(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, days, weather.MaxDailyPoints)

	assert.Equal(t, dailyFields, fake.query("/v1/forecast").Get("daily"))
	assert.Equal(t, "7", fake.query("/v1/forecast").Get("forecast_days"))

	assert.Equal(t, "Monday", days[0].Day)
	assert.Equal(t, "Jul 1", days[0].Label)
	assert.Equal(t, 25, days[0].High)
	assert.Equal(t, 14, days[0].Low)
	assert.Equal(t, "overcast clouds", days[0].Description)
	assert.Equal(t, 19, days[0].WindSpeed)
	assert.Zero(t, days[0].Humidity)
	assert.Zero(t, days[0].Pressure)
	assert.Equal(t, -2, days[5].Low)
}

func TestOpenMeteoHistory(t *testing.T) {
	p, fake := newOpenMeteo(t, map[string]string{
		"/v1/era5": `{"daily": {
			"time": ["2024-05-20", "2024-05-21"],
			"temperature_2m_max": [21.4, null],
			"temperature_2m_min": [11.5, 10.2],
			"precipitation_sum": [2.36, 0.04],
			"windspeed_10m_max": [14.49, 22.5]
		}}`,
	})

	from := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	days, err := p.History(context.Background(), 1, 1, from, to)
	require.NoError(t, err)

	q := fake.query("/v1/era5")
	assert.Equal(t, "2024-05-20", q.Get("start_date"))
	assert.Equal(t, "2025-05-20", q.Get("end_date"))
	assert.Equal(t, archiveFields, q.Get("daily"))

	require.Len(t, days, 2)
	assert.Equal(t, weather.HistoricalDay{Date: "2024-05-20", TempMax: 21, TempMin: 12, Precip: 2.4, WindMax: 14}, days[0])
	assert.Equal(t, weather.HistoricalDay{Date: "2024-05-21", TempMax: 0, TempMin: 10, Precip: 0, WindMax: 23}, days[1])
}

func TestOpenMeteoHistoryMissingDaily(t *testing.T) {
	p, _ := newOpenMeteo(t, map[string]string{"/v1/era5": `{"daily": {}}`})
	_, err := p.History(context.Background(), 1, 1, time.Now(), time.Now())
	assert.ErrorIs(t, err, weather.ErrNoHistoricalData)
}

func TestOpenMeteoGeocodeStatusError(t *testing.T) {
	p, _ := newOpenMeteo(t, nil)
	_, err := p.Geocode(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location lookup failed")
}
