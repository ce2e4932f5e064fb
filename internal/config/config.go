package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/news"
	"github.com/i474232898/weather-news-aggregation/internal/weather/providers"
)

type AppConfig struct {
	// OpenWeatherAPIKey is handed to the primary provider; a placeholder disables it.
	OpenWeatherAPIKey string

	HTTPTimeout time.Duration
	Port        string
	LogLevel    string

	NewsProxyURL string
	Feeds        []news.Feed

	// FeedProbeInterval controls how often feed health is checked (0 = disabled).
	FeedProbeInterval time.Duration

	// Upstream base URLs; empty means the public endpoint.
	OpenWeatherBaseURL string
	OpenMeteo          providers.OpenMeteoURLs
	IPGeoURL           string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Infof("No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if providers.IsPlaceholderKey(cfg.OpenWeatherAPIKey) {
		logger.Log.Warn("OPENWEATHER_API_KEY not configured, Open-Meteo will serve all weather requests")
	}

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	cfg.HTTPTimeout = timeout

	probe, err := getenvDuration("FEED_PROBE_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	if probe < 0 {
		return nil, fmt.Errorf("invalid FEED_PROBE_INTERVAL: must not be negative")
	}
	cfg.FeedProbeInterval = probe

	cfg.Port = getenvDefault("PORT", "8080")
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.NewsProxyURL = os.Getenv("NEWS_PROXY_URL")
	cfg.Feeds = news.DefaultFeeds
	if path := strings.TrimSpace(os.Getenv("NEWS_FEEDS_FILE")); path != "" {
		feeds, err := news.LoadFeeds(path)
		if err != nil {
			return nil, fmt.Errorf("invalid NEWS_FEEDS_FILE: %w", err)
		}
		cfg.Feeds = feeds
	}

	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.OpenMeteo = providers.OpenMeteoURLs{
		Forecast: os.Getenv("OPENMETEO_FORECAST_URL"),
		Geocode:  os.Getenv("OPENMETEO_GEOCODING_URL"),
		Archive:  os.Getenv("OPENMETEO_ARCHIVE_URL"),
	}
	cfg.IPGeoURL = os.Getenv("IPGEO_BASE_URL")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
