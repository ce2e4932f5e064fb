package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
)

// Operation names a facade operation; its title prefixes composite failures.
type Operation string

const (
	OpCurrent Operation = "Weather services"
	OpHourly  Operation = "Hourly forecast"
	OpDaily   Operation = "7-day forecast"
	OpHistory Operation = "Historical data"
)

// ProviderFailure records why one provider in the chain failed.
type ProviderFailure struct {
	Provider string
	Err      error
}

// ChainError is returned when every provider for an operation failed.
// Its message concatenates the constituent messages and is not meant to be parsed.
type ChainError struct {
	Operation Operation
	Failures  []ProviderFailure
}

func (e *ChainError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Operation))
	sb.WriteString(" unavailable.")
	if len(e.Failures) == 0 {
		sb.WriteString(" No provider available.")
		return sb.String()
	}
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, " %s: %v.", f.Provider, f.Err)
	}
	return sb.String()
}

func (e *ChainError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Service is the weather facade: for each operation it tries the providers in
// order and returns the first success.
type Service struct {
	providers []Provider
	now       func() time.Time
}

// NewService creates a new Service. Providers are tried in the given order.
func NewService(providers []Provider) *Service {
	return &Service{
		providers: providers,
		now:       time.Now,
	}
}

// WithClock overrides the clock used for the historical window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Current returns current conditions for coordinates or a city name.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	if !loc.HasCoords() && strings.TrimSpace(loc.City) == "" {
		return WeatherSnapshot{}, ErrLocationRequired
	}
	snap, _, err := runChain(ctx, s.providers, OpCurrent, loc, func(p Provider) (WeatherSnapshot, error) {
		return p.Current(ctx, loc)
	})
	return snap, err
}

// Hourly returns up to MaxHourlyPoints forecast points.
func (s *Service) Hourly(ctx context.Context, loc Location) (HourlyForecast, error) {
	if !loc.HasCoords() {
		return HourlyForecast{}, ErrCoordsRequired
	}
	points, source, err := runChain(ctx, s.providers, OpHourly, loc, func(p Provider) ([]HourlyPoint, error) {
		return p.Hourly(ctx, *loc.Lat, *loc.Lon)
	})
	if err != nil {
		return HourlyForecast{}, err
	}
	return HourlyForecast{Source: source, Points: points}, nil
}

// Daily returns up to MaxDailyPoints daily summaries.
func (s *Service) Daily(ctx context.Context, loc Location) (DailyForecast, error) {
	if !loc.HasCoords() {
		return DailyForecast{}, ErrCoordsRequired
	}
	days, source, err := runChain(ctx, s.providers, OpDaily, loc, func(p Provider) ([]DailyPoint, error) {
		return p.Daily(ctx, *loc.Lat, *loc.Lon)
	})
	if err != nil {
		return DailyForecast{}, err
	}
	return DailyForecast{Source: source, Days: days}, nil
}

// History returns daily observations for the trailing twelve months.
func (s *Service) History(ctx context.Context, loc Location) (History, error) {
	if !loc.HasCoords() {
		return History{}, ErrCoordsRequired
	}
	to := s.now().UTC()
	from := to.AddDate(-1, 0, 0)

	days, source, err := runChain(ctx, s.providers, OpHistory, loc, func(p Provider) ([]HistoricalDay, error) {
		return p.History(ctx, *loc.Lat, *loc.Lon, from, to)
	})
	if err != nil {
		return History{}, err
	}
	return History{
		Source: source,
		From:   from.Format(time.DateOnly),
		To:     to.Format(time.DateOnly),
		Days:   days,
	}, nil
}

// Samples returns the raw forecast steps of the first enabled provider that has
// them. There is no fallback: that provider's error is returned unchanged.
func (s *Service) Samples(ctx context.Context, loc Location) (ForecastSamples, error) {
	if !loc.HasCoords() {
		return ForecastSamples{}, ErrCoordsRequired
	}
	for _, p := range s.providers {
		src, ok := p.(SampleSource)
		if !ok || !p.Enabled() {
			continue
		}
		samples, err := src.Samples(ctx, *loc.Lat, *loc.Lon)
		if err != nil {
			logger.With("weather").WithField("provider", p.Name()).WithError(err).Warn("forecast samples failed")
			return ForecastSamples{}, err
		}
		return ForecastSamples{Source: p.Name(), Samples: samples}, nil
	}
	return ForecastSamples{}, ErrUnsupported
}

// runChain tries each enabled provider in order. Disabled providers and providers
// answering ErrUnsupported are skipped without being recorded as failures.
func runChain[T any](ctx context.Context, providers []Provider, op Operation, loc Location, call func(Provider) (T, error)) (T, string, error) {
	log := logger.With("weather").WithFields(logger.Fields{
		"operation": string(op),
		"location":  loc.Key(),
	})

	var (
		zero     T
		failures []ProviderFailure
	)

	for _, p := range providers {
		if !p.Enabled() {
			log.WithField("provider", p.Name()).Warn("provider not configured, using fallback")
			continue
		}

		result, err := call(p)
		if err == nil {
			log.WithField("provider", p.Name()).Debug("provider served request")
			return result, p.Name(), nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}

		log.WithField("provider", p.Name()).WithError(err).Warn("provider failed, trying next")
		failures = append(failures, ProviderFailure{Provider: p.Name(), Err: err})
	}

	chainErr := &ChainError{Operation: op, Failures: failures}
	log.WithError(chainErr).Error("all providers failed")
	return zero, "", chainErr
}
