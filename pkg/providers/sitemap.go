package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// maxSitemapDepth bounds how many sitemap-index levels are followed.
const maxSitemapDepth = 2

// googleNewsFetcher implements Fetcher for publishers exposing a Google News sitemap.
type googleNewsFetcher struct {
	client HTTPClient
}

// NewGoogleNewsFetcher builds the Google News sitemap adapter.
func NewGoogleNewsFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &googleNewsFetcher{client: client}
}

func (f *googleNewsFetcher) ID() string { return ProviderTypeGoogleNews }

type googleNewsSitemap struct {
	URLs []googleNewsURL `xml:"url"`
}

type googleNewsURL struct {
	Loc  string `xml:"loc"`
	News struct {
		Publication struct {
			Name string `xml:"name"`
		} `xml:"publication"`
		PublicationDate string `xml:"publication_date"`
		Title           string `xml:"title"`
	} `xml:"news"`
	Image struct {
		Loc string `xml:"loc"`
	} `xml:"image"`
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

func (f *googleNewsFetcher) Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.RawArticle, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeGoogleNews) {
		return nil, fmt.Errorf("google news fetcher received incompatible provider type %q", cfg.Type)
	}

	urls, err := f.collect(ctx, cfg, cfg.SourceURL, 0)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawArticle, 0, len(urls))
	for _, entry := range urls {
		loc := strings.TrimSpace(entry.Loc)
		title := strings.TrimSpace(entry.News.Title)
		if loc == "" || title == "" {
			continue
		}
		out = append(out, domain.RawArticle{
			Title:       title,
			PublishedAt: parseTimestamp(entry.News.PublicationDate),
			Source:      firstNonEmpty(entry.News.Publication.Name, cfg.Name),
			ImageURL:    strings.TrimSpace(entry.Image.Loc),
			URL:         loc,
		})
	}
	return out, nil
}

// collect downloads a sitemap and follows nested sitemap indexes up to maxSitemapDepth.
func (f *googleNewsFetcher) collect(ctx context.Context, cfg Provider, url string, depth int) ([]googleNewsURL, error) {
	body, err := download(ctx, f.client, url, cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}

	if children, ok := parseSitemapIndex(body); ok {
		if depth >= maxSitemapDepth {
			return nil, fmt.Errorf("%s sitemap index nested deeper than %d", cfg.ID, maxSitemapDepth)
		}
		var all []googleNewsURL
		for _, child := range children {
			urls, err := f.collect(ctx, cfg, child, depth+1)
			if err != nil {
				return nil, err
			}
			all = append(all, urls...)
		}
		return all, nil
	}

	return parseGoogleNewsSitemap(body)
}

func parseGoogleNewsSitemap(data []byte) ([]googleNewsURL, error) {
	var sitemap googleNewsSitemap
	if err := xml.Unmarshal(data, &sitemap); err != nil {
		return nil, fmt.Errorf("decode google news sitemap: %w", err)
	}
	return sitemap.URLs, nil
}

// parseSitemapIndex returns child sitemap locations when data is a <sitemapindex>.
func parseSitemapIndex(data []byte) ([]string, bool) {
	var idx struct {
		XMLName xml.Name
		sitemapIndex
	}
	if err := xml.Unmarshal(data, &idx); err != nil || idx.XMLName.Local != "sitemapindex" {
		return nil, false
	}
	out := make([]string, 0, len(idx.Sitemaps))
	for _, s := range idx.Sitemaps {
		if loc := strings.TrimSpace(s.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out, true
}
