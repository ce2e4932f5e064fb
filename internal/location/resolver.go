package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/weather"
	"github.com/i474232898/weather-news-aggregation/internal/weather/providers"
)

// Method tells how a position was obtained.
type Method string

const (
	MethodBrowser Method = "browser"
	MethodIP      Method = "ip"
)

const (
	DeviceTimeout = 15 * time.Second
	DeviceMaxAge  = 5 * time.Minute
	// IPAccuracy is the fixed accuracy radius, in meters, reported for IP positions.
	IPAccuracy = 10000

	defaultIPGeoURL = "https://ipapi.co"
)

// Position is a resolved coordinate pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Method    Method  `json:"method"`
}

// PositionOptions are handed to the device; caching up to MaximumAge is the device's job.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DeviceLocator is the platform geolocation surface.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// PermissionState is the answer of a geolocation permission query.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
	PermissionUnknown PermissionState = "unknown"
)

// PermissionChecker is the platform permission query surface.
type PermissionChecker interface {
	QueryGeolocation(ctx context.Context) (PermissionState, error)
}

// Resolver obtains coordinates from the device with IP geolocation as fallback,
// and names coordinates through a geocoder.
type Resolver struct {
	geocoder  weather.Geocoder
	transport *providers.Transport
	ipURL     string
}

// NewResolver creates a Resolver. An empty ipGeoURL selects ipapi.co.
func NewResolver(client *http.Client, geocoder weather.Geocoder, ipGeoURL string) *Resolver {
	if strings.TrimSpace(ipGeoURL) == "" {
		ipGeoURL = defaultIPGeoURL
	}
	return &Resolver{
		geocoder:  geocoder,
		transport: providers.NewTransport("ipgeo", client),
		ipURL:     strings.TrimRight(ipGeoURL, "/"),
	}
}

// DevicePosition asks the device for its position, bounded by DeviceTimeout.
// Every failure comes back as a *GeolocationError.
func (r *Resolver) DevicePosition(ctx context.Context, device DeviceLocator) (Position, error) {
	if device == nil {
		return Position{}, NewGeolocationError(CodeUnsupported)
	}

	ctx, cancel := context.WithTimeout(ctx, DeviceTimeout)
	defer cancel()

	pos, err := device.CurrentPosition(ctx, PositionOptions{
		EnableHighAccuracy: true,
		Timeout:            DeviceTimeout,
		MaximumAge:         DeviceMaxAge,
	})
	if err != nil {
		var geoErr *GeolocationError
		switch {
		case errors.As(err, &geoErr):
			return Position{}, geoErr
		case errors.Is(err, context.DeadlineExceeded):
			return Position{}, NewGeolocationError(CodeTimeout)
		default:
			return Position{}, NewGeolocationError(CodeUnknown)
		}
	}

	pos.Method = MethodBrowser
	return pos, nil
}

// IPPosition approximates the position of clientIP, or of the caller when clientIP is empty.
func (r *Resolver) IPPosition(ctx context.Context, clientIP string) (Position, error) {
	endpoint := r.ipURL + "/json/"
	if clientIP != "" {
		endpoint = fmt.Sprintf("%s/%s/json/", r.ipURL, clientIP)
	}

	body, err := r.transport.Get(ctx, endpoint, nil)
	if err != nil {
		return Position{}, fmt.Errorf("IP geolocation failed: IP geolocation service unavailable: %w", err)
	}

	var payload struct {
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		City        string  `json:"city"`
		CountryName string  `json:"country_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Position{}, fmt.Errorf("IP geolocation failed: %w", err)
	}
	// A zero coordinate is what the service sends when it has nothing.
	if payload.Latitude == 0 || payload.Longitude == 0 {
		return Position{}, errors.New("IP geolocation failed: invalid location data received")
	}

	return Position{
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		Accuracy:  IPAccuracy,
		City:      payload.City,
		Country:   payload.CountryName,
		Method:    MethodIP,
	}, nil
}

// Locate tries the device first and falls back to IP geolocation. When both fail
// the returned *LocationError carries a suggestion and the device error.
func (r *Resolver) Locate(ctx context.Context, device DeviceLocator, clientIP string) (Position, error) {
	log := logger.With("location")

	pos, deviceErr := r.DevicePosition(ctx, device)
	if deviceErr == nil {
		return pos, nil
	}
	log.WithError(deviceErr).Warn("device geolocation failed, trying IP fallback")

	pos, ipErr := r.IPPosition(ctx, clientIP)
	if ipErr == nil {
		return pos, nil
	}
	log.WithError(ipErr).Error("IP geolocation also failed")

	return Position{}, newLocationError(deviceErr, ipErr)
}

// PlaceName reverse geocodes a coordinate pair. It never fails: without a
// geocoder result the name is synthesized from the coordinates.
func (r *Resolver) PlaceName(ctx context.Context, lat, lon float64) weather.Place {
	if r.geocoder == nil {
		return weather.SynthesizedPlace(lat, lon)
	}
	place, err := r.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.With("location").WithError(err).Warn("reverse geocoding failed")
		return weather.SynthesizedPlace(lat, lon)
	}
	return place
}

// Geocode resolves a free-text place name to coordinates.
func (r *Resolver) Geocode(ctx context.Context, name string) (weather.Place, error) {
	if r.geocoder == nil {
		return weather.Place{}, weather.ErrUnsupported
	}
	if strings.TrimSpace(name) == "" {
		return weather.Place{}, weather.ErrLocationRequired
	}
	return r.geocoder.Geocode(ctx, name)
}

// CheckPermission reports the geolocation permission state, or unknown when the
// platform cannot tell.
func (r *Resolver) CheckPermission(ctx context.Context, checker PermissionChecker) PermissionState {
	if checker == nil {
		return PermissionUnknown
	}
	state, err := checker.QueryGeolocation(ctx)
	if err != nil {
		logger.With("location").WithError(err).Warn("could not check geolocation permission")
		return PermissionUnknown
	}
	switch state {
	case PermissionGranted, PermissionDenied, PermissionPrompt:
		return state
	default:
		return PermissionUnknown
	}
}
