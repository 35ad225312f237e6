package providers

import (
	"context"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

// Fetcher retrieves one provider's articles and translates its field names into RawArticle.
// Concrete implementations live in provider-specific files (e.g., newsdata.go).
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.RawArticle, error)
}

// FetcherRegistry resolves the fetcher implementation for a given provider config.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within providers.
type HTTPClient = httpclient.Client
