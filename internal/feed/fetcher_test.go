package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/pkg/providers"
)

func TestFetchAllIsolatesFailures(t *testing.T) {
	ok := &stubFetcher{id: "b", articles: []domain.RawArticle{rawArticle("Stocks rally", "https://reuters.com/a", time.Now())}}
	reg := stubRegistry{
		"a": &stubFetcher{id: "a", err: errNetwork},
		"b": ok,
		"c": &stubFetcher{id: "c", panicMsg: "boom"},
	}
	list := []providers.Provider{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	f := NewFetcher(reg, list, time.Second, nil)
	q := providers.Query{Region: domain.RegionUS}
	results := f.FetchAll(context.Background(), q)

	if len(results) != 4 {
		t.Fatalf("expected one result per provider, got %d", len(results))
	}
	if results[0].OK() || !errors.Is(results[0].Err, errNetwork) {
		t.Fatalf("expected network error for a, got %v", results[0].Err)
	}
	if !results[1].OK() || len(results[1].Articles) != 1 {
		t.Fatalf("expected b to succeed with 1 article, got %+v", results[1])
	}
	if results[2].OK() || !strings.Contains(results[2].Err.Error(), "panicked") {
		t.Fatalf("expected recovered panic for c, got %v", results[2].Err)
	}
	if !errors.Is(results[3].Err, ErrProviderConfig) {
		t.Fatalf("expected config error for unknown provider d, got %v", results[3].Err)
	}
	if ok.gotQuery.Region != domain.RegionUS {
		t.Fatalf("query not forwarded, got %+v", ok.gotQuery)
	}
}

func TestFetchAllAppliesPerProviderTimeout(t *testing.T) {
	reg := stubRegistry{
		"slow": &stubFetcher{id: "slow", delay: time.Second},
		"fast": &stubFetcher{id: "fast", articles: []domain.RawArticle{rawArticle("Bonds steady", "https://reuters.com/b", time.Now())}},
	}
	f := NewFetcher(reg, []providers.Provider{{ID: "slow"}, {ID: "fast"}}, 20*time.Millisecond, nil)

	start := time.Now()
	results := f.FetchAll(context.Background(), providers.Query{})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("fan-out waited %s, timeout not applied", elapsed)
	}
	if results[0].OK() || !strings.Contains(results[0].Err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", results[0].Err)
	}
	if !results[1].OK() {
		t.Fatalf("fast provider should succeed, got %v", results[1].Err)
	}
}

func TestFetchAllMissingAPIKeyIsConfigError(t *testing.T) {
	reg := stubRegistry{"k": &stubFetcher{id: "k", err: providers.ErrMissingAPIKey}}
	f := NewFetcher(reg, []providers.Provider{{ID: "k"}}, time.Second, nil)

	results := f.FetchAll(context.Background(), providers.Query{})
	if !errors.Is(results[0].Err, ErrProviderConfig) || !errors.Is(results[0].Err, providers.ErrMissingAPIKey) {
		t.Fatalf("expected wrapped config error, got %v", results[0].Err)
	}
}

func TestFetchAllNoProviders(t *testing.T) {
	f := NewFetcher(stubRegistry{}, nil, 0, nil)
	if f.Count() != 0 {
		t.Fatalf("expected 0 providers")
	}
	if got := f.FetchAll(context.Background(), providers.Query{}); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
	if f.timeout != defaultProviderTimeout {
		t.Fatalf("expected default timeout, got %s", f.timeout)
	}
}
