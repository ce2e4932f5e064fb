package news

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Item is one normalized article.
type Item struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PubDate     string    `json:"pubDate"`
	PublishedAt time.Time `json:"publishedAt"` // zero when the date could not be parsed
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Image       string    `json:"image"`
	Country     string    `json:"country"`
}

func (it Item) dedupKey() string {
	if it.Link != "" {
		return strings.ToLower(it.Link)
	}
	return strings.ToLower(it.Title)
}

// itemsFromFeed normalizes every entry of a parsed feed.
func itemsFromFeed(feed *gofeed.Feed, source string) []Item {
	if feed == nil {
		return nil
	}
	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "Untitled"
		}

		it := Item{
			Title:       title,
			Link:        strings.TrimSpace(entry.Link),
			PubDate:     entry.Published,
			Description: entry.Description,
			Source:      source,
		}
		if entry.PublishedParsed != nil {
			it.PublishedAt = entry.PublishedParsed.UTC()
		}
		it.Image = imageFor(entry, it.Title, it.Description)
		items = append(items, it)
	}
	return items
}
