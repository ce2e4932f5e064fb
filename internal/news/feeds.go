package news

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Feed is one named RSS/Atom source.
type Feed struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

// DefaultFeeds is the built-in catalog, grouped by region.
var DefaultFeeds = []Feed{
	// India
	{Name: "India Today", URL: "https://www.indiatoday.in/rss/1206584"},
	{Name: "Hindustan Times", URL: "https://www.hindustantimes.com/feeds/rss/cities/delhi-news/rssfeed.xml"},
	{Name: "The Times of India", URL: "https://timesofindia.indiatimes.com/rssfeeds/296589292.cms"},
	{Name: "The Indian Express", URL: "https://indianexpress.com/section/india/feed/"},
	{Name: "IMD", URL: "https://mausam.imd.gov.in/imd_latest/contents_rss.php"},
	// United Kingdom
	{Name: "BBC Weather", URL: "https://feeds.bbci.co.uk/news/uk/rss.xml"},
	{Name: "The Guardian Environment", URL: "https://www.theguardian.com/uk/environment/rss"},
	{Name: "Met Office", URL: "https://www.metoffice.gov.uk/public/data/PWSCache/WarningsRSS/Region/UK"},
	// United States
	{Name: "AP Weather", URL: "https://apnews.com/hub/weather/rss"},
	{Name: "CNN Weather", URL: "http://rss.cnn.com/rss/cnn_latest.rss"},
	{Name: "NOAA News", URL: "https://www.noaa.gov/rss.xml"},
	{Name: "Weather Channel", URL: "https://weather.com/news/rss"},
	// Europe
	{Name: "Euronews", URL: "https://www.euronews.com/rss?level=theme&name=weather"},
	{Name: "DW Environment", URL: "https://rss.dw.com/rdf/rss-en-env"},
	// Australia / New Zealand
	{Name: "ABC Weather", URL: "https://www.abc.net.au/news/feed/2942460/rss.xml"},
	{Name: "Bureau of Meteorology", URL: "http://www.bom.gov.au/rss/weather/"},
	{Name: "NZ Herald", URL: "https://www.nzherald.co.nz/rss/"},
	// Asia
	{Name: "Japan Times", URL: "https://www.japantimes.co.jp/feed/"},
	{Name: "The Straits Times", URL: "https://www.straitstimes.com/news/world/rss.xml"},
	// Canada
	{Name: "CBC Weather", URL: "https://www.cbc.ca/cmlink/rss-weather"},
	// Global
	{Name: "Reuters Environment", URL: "https://feeds.reuters.com/reuters/environment"},
	{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
}

var validate = validator.New()

type feedsFile struct {
	Feeds []Feed `json:"feeds" validate:"required,min=1,dive"`
}

// LoadFeeds reads a feed catalog of the form {"feeds":[{"name":..,"url":..}]}.
func LoadFeeds(path string) ([]Feed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	var file feedsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid feeds file: %w", err)
	}
	return file.Feeds, nil
}
