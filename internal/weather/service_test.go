package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
)

type fakeProvider struct {
	name    string
	enabled bool
	err     error
	calls   int

	snapshot WeatherSnapshot
	hourly   []HourlyPoint
	daily    []DailyPoint
	history  []HistoricalDay

	from, to time.Time
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Enabled() bool { return f.enabled }

func (f *fakeProvider) Current(context.Context, Location) (WeatherSnapshot, error) {
	f.calls++
	if f.err != nil {
		return WeatherSnapshot{}, f.err
	}
	return f.snapshot, nil
}

func (f *fakeProvider) Hourly(context.Context, float64, float64) ([]HourlyPoint, error) {
	f.calls++
	return f.hourly, f.err
}

func (f *fakeProvider) Daily(context.Context, float64, float64) ([]DailyPoint, error) {
	f.calls++
	return f.daily, f.err
}

func (f *fakeProvider) History(_ context.Context, _, _ float64, from, to time.Time) ([]HistoricalDay, error) {
	f.calls++
	f.from, f.to = from, to
	return f.history, f.err
}

func TestMain(m *testing.M) {
	logger.Silence()
	m.Run()
}

func TestCurrentSkipsDisabledPrimary(t *testing.T) {
	primary := &fakeProvider{name: SourceOpenWeather, enabled: false}
	fallback := &fakeProvider{name: SourceOpenMeteo, enabled: true, snapshot: WeatherSnapshot{Source: SourceOpenMeteo, Temperature: 7}}

	svc := NewService([]Provider{primary, fallback})
	snap, err := svc.Current(context.Background(), InCity("Oslo", ""))
	require.NoError(t, err)

	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, SourceOpenMeteo, snap.Source)
	assert.Equal(t, 7, snap.Temperature)
}

func TestCurrentFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeProvider{name: SourceOpenWeather, enabled: true, err: errors.New("weather fetch failed: unexpected status code 500")}
	fallback := &fakeProvider{name: SourceOpenMeteo, enabled: true, snapshot: WeatherSnapshot{Source: SourceOpenMeteo}}

	svc := NewService([]Provider{primary, fallback})
	snap, err := svc.Current(context.Background(), AtCoords(1, 2))
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, SourceOpenMeteo, snap.Source)
}

func TestCurrentBothFail(t *testing.T) {
	primary := &fakeProvider{name: SourceOpenWeather, enabled: true, err: errors.New("primary exploded")}
	fallback := &fakeProvider{name: SourceOpenMeteo, enabled: true, err: ErrCityNotFound}

	svc := NewService([]Provider{primary, fallback})
	_, err := svc.Current(context.Background(), InCity("Atlantis", ""))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "primary exploded")
	assert.Contains(t, err.Error(), "city not found")
	assert.ErrorIs(t, err, ErrCityNotFound)

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, OpCurrent, chainErr.Operation)
	assert.Len(t, chainErr.Failures, 2)
}

func TestCurrentRequiresLocation(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Current(context.Background(), Location{City: "  "})
	assert.ErrorIs(t, err, ErrLocationRequired)
}

func TestForecastsRequireCoords(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	_, err := svc.Hourly(ctx, InCity("Paris", "FR"))
	assert.ErrorIs(t, err, ErrCoordsRequired)
	_, err = svc.Daily(ctx, InCity("Paris", "FR"))
	assert.ErrorIs(t, err, ErrCoordsRequired)
	_, err = svc.History(ctx, InCity("Paris", "FR"))
	assert.ErrorIs(t, err, ErrCoordsRequired)
}

func TestHourlyAndDailyTagSource(t *testing.T) {
	primary := &fakeProvider{name: SourceOpenWeather, enabled: true, hourly: []HourlyPoint{{Temperature: 1}}, daily: []DailyPoint{{High: 3}}}
	fallback := &fakeProvider{name: SourceOpenMeteo, enabled: true}

	svc := NewService([]Provider{primary, fallback})
	ctx := context.Background()

	hourly, err := svc.Hourly(ctx, AtCoords(10, 20))
	require.NoError(t, err)
	assert.Equal(t, SourceOpenWeather, hourly.Source)
	assert.Len(t, hourly.Points, 1)

	daily, err := svc.Daily(ctx, AtCoords(10, 20))
	require.NoError(t, err)
	assert.Equal(t, SourceOpenWeather, daily.Source)
	assert.Equal(t, 0, fallback.calls)
}

func TestHistorySkipsUnsupportedAndUsesTrailingYear(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	primary := &fakeProvider{name: SourceOpenWeather, enabled: true, err: ErrUnsupported}
	fallback := &fakeProvider{name: SourceOpenMeteo, enabled: true, history: []HistoricalDay{{Date: "2024-05-20"}}}

	svc := NewService([]Provider{primary, fallback}).WithClock(func() time.Time { return now })
	hist, err := svc.History(context.Background(), AtCoords(10, 20))
	require.NoError(t, err)

	assert.Equal(t, SourceOpenMeteo, hist.Source)
	assert.Equal(t, "2024-05-20", hist.From)
	assert.Equal(t, "2025-05-20", hist.To)
	assert.Equal(t, now.AddDate(-1, 0, 0), fallback.from)
}

func TestHistoryOnlyUnsupportedProviders(t *testing.T) {
	primary := &fakeProvider{name: SourceOpenWeather, enabled: true, err: ErrUnsupported}

	svc := NewService([]Provider{primary})
	_, err := svc.History(context.Background(), AtCoords(10, 20))
	require.Error(t, err)
	assert.Equal(t, "Historical data unavailable. No provider available.", err.Error())
}

type samplingProvider struct {
	*fakeProvider
	samples []ProviderReading
}

func (s *samplingProvider) Samples(context.Context, float64, float64) ([]ProviderReading, error) {
	s.calls++
	return s.samples, s.err
}

func TestSamplesFromFirstEnabledSource(t *testing.T) {
	disabled := &samplingProvider{fakeProvider: &fakeProvider{name: "off", enabled: false}}
	plain := &fakeProvider{name: SourceOpenMeteo, enabled: true}
	primary := &samplingProvider{
		fakeProvider: &fakeProvider{name: SourceOpenWeather, enabled: true},
		samples:      []ProviderReading{{TemperatureC: 3}, {TemperatureC: 4}},
	}

	svc := NewService([]Provider{disabled, plain, primary})
	got, err := svc.Samples(context.Background(), AtCoords(1, 2))
	require.NoError(t, err)
	assert.Equal(t, SourceOpenWeather, got.Source)
	assert.Len(t, got.Samples, 2)
	assert.Zero(t, disabled.calls)
	assert.Zero(t, plain.calls)
}

func TestSamplesDoesNotFallBack(t *testing.T) {
	failing := &samplingProvider{fakeProvider: &fakeProvider{name: SourceOpenWeather, enabled: true, err: errors.New("forecast fetch failed")}}
	next := &samplingProvider{fakeProvider: &fakeProvider{name: "other", enabled: true}}

	svc := NewService([]Provider{failing, next})
	_, err := svc.Samples(context.Background(), AtCoords(1, 2))
	assert.EqualError(t, err, "forecast fetch failed")
	assert.Zero(t, next.calls)
}

func TestSamplesWithoutSource(t *testing.T) {
	svc := NewService([]Provider{&fakeProvider{name: SourceOpenMeteo, enabled: true}})

	_, err := svc.Samples(context.Background(), AtCoords(1, 2))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = svc.Samples(context.Background(), InCity("Oslo", ""))
	assert.ErrorIs(t, err, ErrCoordsRequired)
}
