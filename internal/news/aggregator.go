package news

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-news-aggregation/internal/logger"
)

// MaxItems caps the digest size.
const MaxItems = 96

// CountryGroup holds the digest items inferred to one region.
type CountryGroup struct {
	Country string `json:"country"`
	Items   []Item `json:"items"`
}

// Digest is the outcome of one aggregation run.
type Digest struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Items       []Item         `json:"items"`
	Groups      []CountryGroup `json:"groups"`
	FeedsTotal  int            `json:"feedsTotal"`
	FeedsFailed int            `json:"feedsFailed"`
}

// FeedOutcome is the settled result of fetching one feed.
type FeedOutcome struct {
	Feed  Feed
	Items []Item
	Err   error
}

// Aggregator merges the feeds of a catalog into one curated digest.
type Aggregator struct {
	fetcher Fetcher
	feeds   []Feed
	now     func() time.Time
}

// NewAggregator creates an Aggregator. A nil or empty feeds list selects DefaultFeeds.
func NewAggregator(fetcher Fetcher, feeds []Feed) *Aggregator {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &Aggregator{
		fetcher: fetcher,
		feeds:   feeds,
		now:     time.Now,
	}
}

// Feeds returns the catalog in use.
func (a *Aggregator) Feeds() []Feed {
	return a.feeds
}

// FetchAll fetches every feed concurrently and returns the outcomes in
// completion order. Individual failures are reported in the outcome, never as
// an error. Fetches are detached from ctx cancellation; the HTTP client timeout bounds them.
func (a *Aggregator) FetchAll(ctx context.Context) []FeedOutcome {
	fetchCtx := context.WithoutCancel(ctx)
	outcomes := make(chan FeedOutcome, len(a.feeds))

	var g errgroup.Group
	for _, feed := range a.feeds {
		g.Go(func() error {
			items, err := a.fetcher.Fetch(fetchCtx, feed)
			outcomes <- FeedOutcome{Feed: feed, Items: items, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	settled := make([]FeedOutcome, 0, len(a.feeds))
	for o := range outcomes {
		settled = append(settled, o)
	}
	return settled
}

// Aggregate builds a digest: fetch, keep weather-related items, dedupe, sort
// newest first, cap at MaxItems, then group by region.
func (a *Aggregator) Aggregate(ctx context.Context) (*Digest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest := &Digest{
		ID:          uuid.NewString(),
		GeneratedAt: a.now().UTC(),
		FeedsTotal:  len(a.feeds),
	}
	log := logger.With("news").WithField("run_id", digest.ID)

	var merged []Item
	for _, o := range a.FetchAll(ctx) {
		if o.Err != nil {
			digest.FeedsFailed++
			log.WithField("feed", o.Feed.Name).WithError(o.Err).Warn("feed failed")
			continue
		}
		for _, it := range o.Items {
			if IsWeatherRelated(it.Title, it.Description) {
				merged = append(merged, it)
			}
		}
	}

	items := sortByDate(dedupe(merged))
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	for i := range items {
		items[i].Country = InferCountry(items[i].Link)
	}

	digest.Items = items
	digest.Groups = groupByCountry(items)

	log.WithFields(logger.Fields{
		"items":        len(items),
		"feeds_failed": digest.FeedsFailed,
	}).Info("news digest built")
	return digest, nil
}

func dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		key := it.dedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

var epoch = time.Unix(0, 0).UTC()

// sortByDate orders newest first. Undated items sort as the Unix epoch and keep
// their relative order.
func sortByDate(items []Item) []Item {
	sortKey := func(t time.Time) time.Time {
		if t.IsZero() {
			return epoch
		}
		return t
	}
	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i].PublishedAt).After(sortKey(items[j].PublishedAt))
	})
	return items
}

func groupByCountry(items []Item) []CountryGroup {
	index := make(map[string]int)
	var groups []CountryGroup
	for _, it := range items {
		i, ok := index[it.Country]
		if !ok {
			i = len(groups)
			index[it.Country] = i
			groups = append(groups, CountryGroup{Country: it.Country})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Country < groups[j].Country
	})
	return groups
}
