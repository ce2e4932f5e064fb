package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/news"
)

func TestMain(m *testing.M) {
	logger.Silence()
	m.Run()
}

type stubFetcher struct {
	failing map[string]bool
}

func (f stubFetcher) Fetch(_ context.Context, feed news.Feed) ([]news.Item, error) {
	if f.failing[feed.Name] {
		return nil, errors.New("failed to load feed")
	}
	return []news.Item{{Title: "Rain"}}, nil
}

func TestProbeCountsFailures(t *testing.T) {
	agg := news.NewAggregator(stubFetcher{failing: map[string]bool{"b": true}}, []news.Feed{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	s := New(agg, time.Minute)

	assert.Equal(t, 1, s.Probe())
}

func TestStartDisabled(t *testing.T) {
	s := New(news.NewAggregator(stubFetcher{}, nil), 0)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStartSchedules(t *testing.T) {
	s := New(news.NewAggregator(stubFetcher{}, []news.Feed{{Name: "a"}}), 90*time.Second)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.scheduler.Jobs(), 1)
}

type deadlineFetcher struct {
	hasDeadline chan bool
}

func (f deadlineFetcher) Fetch(ctx context.Context, _ news.Feed) ([]news.Item, error) {
	_, ok := ctx.Deadline()
	f.hasDeadline <- ok
	return nil, nil
}

func TestProbeLeavesTimeoutToHTTPClient(t *testing.T) {
	f := deadlineFetcher{hasDeadline: make(chan bool, 1)}
	s := New(news.NewAggregator(f, []news.Feed{{Name: "a"}}), time.Minute)

	assert.Zero(t, s.Probe())
	assert.False(t, <-f.hasDeadline)
}
