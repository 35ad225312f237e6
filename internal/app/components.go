package app

import (
	"fmt"

	"github.com/samvad-hq/market-news-desk/internal/config"
	"github.com/samvad-hq/market-news-desk/internal/enricher"
	"github.com/samvad-hq/market-news-desk/internal/feed"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
	"github.com/samvad-hq/market-news-desk/pkg/providers"
)

// imageScrapeLimit caps og:image page fetches per feed request.
const imageScrapeLimit = 10

// feedPipeline is the feed service plus the provider list it was built from.
type feedPipeline struct {
	service   *feed.Service
	providers []providers.Provider
}

// buildFeedPipeline loads the provider registry and wires fetcher, aggregator and
// optional image enricher into a feed service.
func buildFeedPipeline(cfg *config.Config, log logger.Logger) (*feedPipeline, error) {
	providerReg, err := providers.LoadRegistry(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("load providers registry: %w", err)
	}

	enabled := providerReg.Enabled()
	ids := make([]string, 0, len(enabled))
	for _, p := range enabled {
		ids = append(ids, p.ID)
	}
	log.InfoObj("providers registry loaded", "providers_meta", map[string]any{
		"count":   len(ids),
		"ids":     ids,
		"timeout": cfg.ProviderTimeout.String(),
	})

	client := httpclient.NewRestyClient(cfg.ProviderTimeout)
	fetcher := feed.NewFetcher(providers.DefaultFetcherRegistry(client), enabled, cfg.ProviderTimeout, log)
	aggregator := feed.NewAggregator(cfg.SortMode)

	var enr feed.Enricher
	if cfg.EnrichImages {
		enr = enricher.NewImageScraper(client, log, imageScrapeLimit)
	}

	return &feedPipeline{
		service:   feed.NewService(fetcher, aggregator, enr, log),
		providers: enabled,
	}, nil
}
