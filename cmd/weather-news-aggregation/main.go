package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-news-aggregation/internal/api/http"
	"github.com/i474232898/weather-news-aggregation/internal/config"
	"github.com/i474232898/weather-news-aggregation/internal/location"
	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/news"
	"github.com/i474232898/weather-news-aggregation/internal/scheduler"
	"github.com/i474232898/weather-news-aggregation/internal/weather"
	"github.com/i474232898/weather-news-aggregation/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	log := logger.With("main")

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Open-Meteo needs no key and doubles as geocoder.
	meteo := providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteo)

	// Primary first; a placeholder key makes it skip itself.
	service := weather.NewService([]weather.Provider{
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL),
		meteo,
	})

	resolver := location.NewResolver(httpClient, meteo, cfg.IPGeoURL)
	aggregator := news.NewAggregator(news.NewProxyFetcher(httpClient, cfg.NewsProxyURL), cfg.Feeds)

	sched := scheduler.New(aggregator, cfg.FeedProbeInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-news-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// News fans out to every feed before answering.
		WriteTimeout: 3 * cfg.HTTPTimeout,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-news-aggregation",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Handlers{
		Weather:  service,
		Location: resolver,
		News:     aggregator,
	})

	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Warn("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}
