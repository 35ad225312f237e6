package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// theNewsAPIFetcher reads TheNewsAPI /v1/news/all endpoint.
type theNewsAPIFetcher struct {
	client HTTPClient
}

// NewTheNewsAPIFetcher builds the TheNewsAPI adapter.
func NewTheNewsAPIFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &theNewsAPIFetcher{client: client}
}

func (f *theNewsAPIFetcher) ID() string { return ProviderTypeTheNewsAPI }

type theNewsAPIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type theNewsAPIArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	ImageURL    string `json:"image_url"`
	URL         string `json:"url"`
}

func (f *theNewsAPIFetcher) Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.RawArticle, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeTheNewsAPI) {
		return nil, fmt.Errorf("thenewsapi fetcher received incompatible provider type %q", cfg.Type)
	}

	var resp theNewsAPIResponse
	if err := fetchJSON(ctx, f.client, cfg, q, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s reported error %s: %s", cfg.ID, resp.Error.Code, resp.Error.Message)
	}

	items, err := decodeList[theNewsAPIArticle](cfg.ID, "data", resp.Data)
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
			Description: firstNonEmpty(it.Description, it.Snippet),
			PublishedAt: parseTimestamp(it.PublishedAt),
			Source:      it.Source,
			ImageURL:    it.ImageURL,
			URL:         it.URL,
		})
	}
	return out, nil
}
