package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// newsDataFetcher reads the NewsData.io /news endpoint.
type newsDataFetcher struct {
	client HTTPClient
}

// NewNewsDataFetcher builds the NewsData.io adapter.
func NewNewsDataFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsDataFetcher{client: client}
}

func (f *newsDataFetcher) ID() string { return ProviderTypeNewsData }

type newsDataResponse struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
}

type newsDataArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	SourceID    string `json:"source_id"`
	SourceName  string `json:"source_name"`
	ImageURL    string `json:"image_url"`
	Link        string `json:"link"`
}

func (f *newsDataFetcher) Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.RawArticle, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeNewsData) {
		return nil, fmt.Errorf("newsdata fetcher received incompatible provider type %q", cfg.Type)
	}

	var resp newsDataResponse
	if err := fetchJSON(ctx, f.client, cfg, q, &resp); err != nil {
		return nil, err
	}
	if strings.EqualFold(resp.Status, "error") {
		return nil, fmt.Errorf("%s reported error: %s", cfg.ID, responseSnippet(resp.Results))
	}

	items, err := decodeList[newsDataArticle](cfg.ID, "results", resp.Results)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawArticle, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		out = append(out, domain.RawArticle{
			Title:       it.Title,
			Description: it.Description,
			PublishedAt: parseTimestamp(it.PubDate),
			Source:      firstNonEmpty(it.SourceID, it.SourceName),
			ImageURL:    it.ImageURL,
			URL:         it.Link,
		})
	}
	return out, nil
}
