package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/news"
)

// Scheduler periodically probes the news feeds and logs their health. It keeps no results.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	aggregator *news.Aggregator
	interval   time.Duration
}

// New creates a new Scheduler.
func New(aggregator *news.Aggregator, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		aggregator: aggregator,
		interval:   interval,
	}
}

// Start schedules the probe and starts the underlying scheduler. A zero interval disables it.
func (s *Scheduler) Start() error {
	log := logger.With("scheduler")
	if s.interval <= 0 {
		log.Info("feed probe disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().Do(func() { s.Probe() })
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.WithField("interval_minutes", minutes).Info("feed probe scheduled")
	return nil
}

// Probe fetches every feed once and logs which ones failed. It returns the number of failures.
// Each fetch is bounded by the HTTP client timeout alone.
func (s *Scheduler) Probe() int {
	log := logger.With("scheduler")
	log.Info("running feed probe")

	failed := 0
	for _, o := range s.aggregator.FetchAll(context.Background()) {
		entry := log.WithField("feed", o.Feed.Name)
		if o.Err != nil {
			failed++
			entry.WithError(o.Err).Warn("feed unhealthy")
			continue
		}
		entry.WithField("items", len(o.Items)).Debug("feed healthy")
	}

	log.WithFields(logger.Fields{
		"feeds":  len(s.aggregator.Feeds()),
		"failed": failed,
	}).Info("completed feed probe")
	return failed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
