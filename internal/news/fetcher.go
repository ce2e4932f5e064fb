package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

const defaultProxyURL = "https://api.allorigins.win/get"

// ErrFeedLoad is returned when the proxy does not answer with a 2xx.
var ErrFeedLoad = errors.New("failed to load feed")

// Fetcher loads and normalizes the items of one feed.
type Fetcher interface {
	Fetch(ctx context.Context, feed Feed) ([]Item, error)
}

// ProxyFetcher fetches feeds through a CORS proxy answering {"contents": "<xml>"}.
type ProxyFetcher struct {
	client   *resty.Client
	proxyURL string
}

// NewProxyFetcher creates a ProxyFetcher. An empty proxyURL selects allorigins.
func NewProxyFetcher(client *http.Client, proxyURL string) *ProxyFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(proxyURL) == "" {
		proxyURL = defaultProxyURL
	}
	return &ProxyFetcher{
		client:   resty.NewWithClient(client),
		proxyURL: proxyURL,
	}
}

func (f *ProxyFetcher) Fetch(ctx context.Context, feed Feed) ([]Item, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("url", feed.URL).
		Get(f.proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedLoad, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrFeedLoad, resp.StatusCode())
	}

	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("decode proxy response: %w", err)
	}

	// gofeed parsers keep per-parse state.
	parsed, err := gofeed.NewParser().ParseString(envelope.Contents)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}
	return itemsFromFeed(parsed, feed.Name), nil
}
