package providers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// rssFetcher reads any RSS or Atom feed. Region selects an alternate feed URL
// from RegionValues when one is configured; otherwise source_url is used.
type rssFetcher struct {
	client HTTPClient
}

// NewRSSFetcher builds the RSS/Atom adapter.
func NewRSSFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &rssFetcher{client: client}
}

func (f *rssFetcher) ID() string { return ProviderTypeRSS }

func (f *rssFetcher) Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.RawArticle, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeRSS) {
		return nil, fmt.Errorf("rss fetcher received incompatible provider type %q", cfg.Type)
	}

	feedURL := cfg.SourceURL
	if alt := cfg.RegionValue(q.Region); alt != "" {
		feedURL = alt
	}

	body, err := download(ctx, f.client, feedURL, cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", cfg.ID, err)
	}

	source := firstNonEmpty(ConfigString(cfg, "source", ""), feed.Title, cfg.Name)
	out := make([]domain.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		out = append(out, domain.RawArticle{
			Title:       item.Title,
			Description: firstNonEmpty(item.Description, item.Content),
			PublishedAt: itemTime(item),
			Source:      source,
			ImageURL:    itemImage(item),
			URL:         item.Link,
		})
	}
	return out, nil
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
