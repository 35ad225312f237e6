package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

const (
	ProviderTypeNewsData   = "newsdata"
	ProviderTypeTheNewsAPI = "thenewsapi"
	ProviderTypeNewsAPI    = "newsapi"
	ProviderTypeRSS        = "rss"
	ProviderTypeGoogleNews = "google_news_sitemap"
)

// AdapterRegistry resolves adapters by provider type. A provider id may be bound
// to a dedicated adapter, which then wins over its type. It is read-only after
// construction and safe for concurrent use.
type AdapterRegistry struct {
	byType map[string]Fetcher
	byID   map[string]Fetcher
}

// NewAdapterRegistry indexes adapters by type. overrides bind provider ids to
// dedicated adapters.
func NewAdapterRegistry(byType map[string]Fetcher, overrides map[string]Fetcher) *AdapterRegistry {
	return &AdapterRegistry{byType: lowerKeys(byType), byID: lowerKeys(overrides)}
}

func lowerKeys(in map[string]Fetcher) map[string]Fetcher {
	out := make(map[string]Fetcher, len(in))
	for k, f := range in {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && f != nil {
			out[k] = f
		}
	}
	return out
}

// FetcherFor returns the adapter for cfg.
func (r *AdapterRegistry) FetcherFor(cfg Provider) (Fetcher, error) {
	id := strings.ToLower(strings.TrimSpace(cfg.ID))
	if id == "" {
		return nil, fmt.Errorf("provider id is empty")
	}
	if f, ok := r.byID[id]; ok {
		return f, nil
	}
	if f, ok := r.byType[strings.ToLower(strings.TrimSpace(cfg.Type))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no adapter for provider %q (type %q)", cfg.ID, cfg.Type)
}

// DefaultHTTPClient returns the client used when none is injected. The feed
// applies its own tighter per-provider deadline through the context.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultFetcherRegistry binds every built-in adapter to its provider type.
func DefaultFetcherRegistry(client HTTPClient) *AdapterRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return NewAdapterRegistry(map[string]Fetcher{
		ProviderTypeNewsData:   NewNewsDataFetcher(client),
		ProviderTypeTheNewsAPI: NewTheNewsAPIFetcher(client),
		ProviderTypeNewsAPI:    NewNewsAPIFetcher(client),
		ProviderTypeRSS:        NewRSSFetcher(client),
		ProviderTypeGoogleNews: NewGoogleNewsFetcher(client),
	}, nil)
}
