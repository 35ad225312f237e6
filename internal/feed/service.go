package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/providers"
)

var (
	// ErrInvalidRequest covers caller mistakes; callers map it to a 4xx.
	ErrInvalidRequest = errors.New("invalid feed request")
	// ErrInvalidRegion is returned for region keys outside domain.Regions.
	ErrInvalidRegion = fmt.Errorf("%w: unknown region", ErrInvalidRequest)
	// ErrInternal marks faults in our own wiring; callers map it to a 5xx.
	ErrInternal = errors.New("internal feed error")
)

const (
	msgNoProviders = "no news providers configured"
	msgAllFailed   = "all news providers failed"
)

// Request is an inbound feed query.
type Request struct {
	Region string
	From   time.Time
	To     time.Time
}

// ResultFetcher is the fan-out stage used by Service.
type ResultFetcher interface {
	FetchAll(ctx context.Context, q providers.Query) []domain.ProviderResult
	Count() int
}

// Enricher optionally completes aggregated articles (e.g. missing images).
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// Service answers feed requests from live provider calls.
type Service struct {
	fetcher    ResultFetcher
	aggregator *Aggregator
	enricher   Enricher
	log        logger.Logger
}

// NewService wires the pipeline. enricher may be nil.
func NewService(fetcher ResultFetcher, aggregator *Aggregator, enricher Enricher, log logger.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		aggregator: aggregator,
		enricher:   enricher,
		log:        logger.Ensure(log),
	}
}

// ParseRegion maps a caller-supplied key to a region. Empty means all.
func ParseRegion(raw string) (domain.Region, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return domain.RegionAll, nil
	}
	r := domain.Region(raw)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, raw)
	}
	return r, nil
}

// GetFeed builds the feed for req. The returned response is always usable: on
// error it carries an empty article list and a message. Total provider outage is
// not an error; only bad input and internal faults are.
func (s *Service) GetFeed(ctx context.Context, req Request) (resp domain.FeedResponse, err error) {
	resp = domain.FeedResponse{Articles: []domain.Article{}}

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorObj("feed pipeline panicked", "feed_error", map[string]any{
				"region": req.Region,
				"panic":  fmt.Sprint(r),
			})
			err = fmt.Errorf("%w: %v", ErrInternal, r)
			resp = domain.FeedResponse{Articles: []domain.Article{}, Error: err.Error()}
		}
	}()

	region, err := ParseRegion(req.Region)
	if err != nil {
		resp.Error = err.Error()
		return resp, err
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		err = fmt.Errorf("%w: date range ends before it starts", ErrInvalidRequest)
		resp.Error = err.Error()
		return resp, err
	}

	if s.fetcher == nil || s.fetcher.Count() == 0 {
		resp.Error = msgNoProviders
		return resp, nil
	}

	results := s.fetcher.FetchAll(ctx, providers.Query{
		Region: region,
		Range:  domain.DateRange{From: req.From, To: req.To},
	})

	failed, configFaults := 0, 0
	for _, res := range results {
		if res.OK() {
			continue
		}
		failed++
		if errors.Is(res.Err, ErrProviderConfig) {
			configFaults++
		}
	}
	if len(results) > 0 && failed == len(results) {
		if configFaults == failed {
			err = fmt.Errorf("%w: every provider is misconfigured", ErrInternal)
			resp.Error = err.Error()
			return resp, err
		}
		resp.Error = msgAllFailed
		return resp, nil
	}

	articles := s.aggregator.Aggregate(results, region)
	if s.enricher != nil && len(articles) > 0 {
		articles = s.enricher.Enrich(ctx, articles)
	}
	resp.Articles = articles

	s.log.InfoObj("feed built", "feed_summary", map[string]any{
		"region":           string(region),
		"providers":        len(results),
		"providers_failed": failed,
		"articles":         len(articles),
	})
	return resp, nil
}
