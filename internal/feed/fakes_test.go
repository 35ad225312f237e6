package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/pkg/providers"
)

// stubFetcher returns canned articles or an error, optionally after a delay.
type stubFetcher struct {
	id       string
	articles []domain.RawArticle
	err      error
	delay    time.Duration
	panicMsg string
	gotQuery providers.Query
}

func (s *stubFetcher) ID() string { return s.id }

func (s *stubFetcher) Fetch(ctx context.Context, _ providers.Provider, q providers.Query) ([]domain.RawArticle, error) {
	s.gotQuery = q
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

// stubRegistry resolves fetchers by provider id.
type stubRegistry map[string]providers.Fetcher

func (r stubRegistry) FetcherFor(cfg providers.Provider) (providers.Fetcher, error) {
	f, ok := r[cfg.ID]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for provider %q", cfg.ID)
	}
	return f, nil
}

var errNetwork = errors.New("dial tcp: connection refused")

func rawArticle(title, link string, published time.Time) domain.RawArticle {
	return domain.RawArticle{
		Title:       title,
		Description: "",
		PublishedAt: published,
		Source:      "Reuters",
		URL:         link,
	}
}
