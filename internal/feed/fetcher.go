package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/providers"
)

// ErrProviderConfig tags failures caused by our own provider configuration
// (unknown adapter type, missing API key) rather than by the remote service.
var ErrProviderConfig = errors.New("provider misconfigured")

const defaultProviderTimeout = 8 * time.Second

// Fetcher fans a feed request out to every configured provider.
type Fetcher struct {
	registry  providers.FetcherRegistry
	providers []providers.Provider
	timeout   time.Duration
	log       logger.Logger
}

// NewFetcher wires the provider list with the adapter registry. A non-positive
// timeout falls back to the default per-provider bound.
func NewFetcher(reg providers.FetcherRegistry, list []providers.Provider, timeout time.Duration, log logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	cp := make([]providers.Provider, len(list))
	copy(cp, list)
	return &Fetcher{
		registry:  reg,
		providers: cp,
		timeout:   timeout,
		log:       logger.Ensure(log),
	}
}

// Count returns the number of configured providers.
func (f *Fetcher) Count() int {
	if f == nil {
		return 0
	}
	return len(f.providers)
}

// FetchAll calls every provider concurrently and waits for all of them to settle.
// Each provider's outcome lands in its own slot; one failure never affects another.
func (f *Fetcher) FetchAll(ctx context.Context, q providers.Query) []domain.ProviderResult {
	if f == nil || len(f.providers) == 0 {
		return nil
	}

	results := make([]domain.ProviderResult, len(f.providers))
	var wg sync.WaitGroup
	wg.Add(len(f.providers))
	for i, cfg := range f.providers {
		go func(i int, cfg providers.Provider) {
			defer wg.Done()
			results[i] = f.fetchOne(ctx, cfg, q)
		}(i, cfg)
	}
	wg.Wait()

	return results
}

// fetchOne runs a single provider call under its own deadline and converts
// panics and errors into a tagged result.
func (f *Fetcher) fetchOne(ctx context.Context, cfg providers.Provider, q providers.Query) (res domain.ProviderResult) {
	start := time.Now()
	res = domain.ProviderResult{ProviderID: cfg.ID, ProviderName: cfg.Name}

	defer func() {
		if r := recover(); r != nil {
			res.Articles = nil
			res.Err = fmt.Errorf("provider %s panicked: %v", cfg.ID, r)
		}
		f.logResult(res, time.Since(start))
	}()

	fetcher, err := f.registry.FetcherFor(cfg)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrProviderConfig, err)
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	articles, err := fetcher.Fetch(callCtx, cfg, q)
	switch {
	case errors.Is(err, providers.ErrMissingAPIKey):
		res.Err = fmt.Errorf("%w: %w", ErrProviderConfig, err)
	case err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		res.Err = fmt.Errorf("provider %s timed out after %s: %w", cfg.ID, f.timeout, err)
	case err != nil:
		res.Err = fmt.Errorf("fetch provider %s: %w", cfg.ID, err)
	default:
		res.Articles = articles
	}
	return res
}

func (f *Fetcher) logResult(res domain.ProviderResult, elapsed time.Duration) {
	if res.Err != nil {
		f.log.WarnObj("provider fetch failed", "provider_error", map[string]any{
			"provider_id": res.ProviderID,
			"elapsed_ms":  elapsed.Milliseconds(),
			"error":       res.Err.Error(),
		})
		return
	}
	f.log.DebugObj("provider fetch completed", "provider_result", map[string]any{
		"provider_id":       res.ProviderID,
		"elapsed_ms":        elapsed.Milliseconds(),
		"articles_received": len(res.Articles),
	})
}
