package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// newsAPIFetcher reads NewsAPI.org top-headlines / everything endpoints.
type newsAPIFetcher struct {
	client HTTPClient
}

// NewNewsAPIFetcher builds the NewsAPI.org adapter.
func NewNewsAPIFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsAPIFetcher{client: client}
}

func (f *newsAPIFetcher) ID() string { return ProviderTypeNewsAPI }

type newsAPIResponse struct {
	Status   string          `json:"status"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Articles json.RawMessage `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

func (f *newsAPIFetcher) Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.RawArticle, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeNewsAPI) {
		return nil, fmt.Errorf("newsapi fetcher received incompatible provider type %q", cfg.Type)
	}

	var resp newsAPIResponse
	if err := fetchJSON(ctx, f.client, cfg, q, &resp); err != nil {
		return nil, err
	}
	if strings.EqualFold(resp.Status, "error") {
		return nil, fmt.Errorf("%s reported error %s: %s", cfg.ID, resp.Code, resp.Message)
	}

	items, err := decodeList[newsAPIArticle](cfg.ID, "articles", resp.Articles)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawArticle, 0, len(items))
	for _, it := range items {
		// NewsAPI tombstones deleted stories as "[Removed]".
		if t := strings.TrimSpace(it.Title); t == "" || t == "[Removed]" {
			continue
		}
		out = append(out, domain.RawArticle{
			Title:       it.Title,
			Description: it.Description,
			PublishedAt: parseTimestamp(it.PublishedAt),
			Source:      it.Source.Name,
			ImageURL:    it.URLToImage,
			URL:         it.URL,
		})
	}
	return out, nil
}
