package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

func TestNewsDataFetcherFetchSuccess(t *testing.T) {
	const body = `{"status":"success","totalResults":3,"results":[
		{"title":"Gold hits record high","description":"Bullion climbs","pubDate":"2025-03-10 11:45:00","source_id":"reuters","image_url":"https://img.example.org/a.png","link":"https://reuters.com/a"},
		{"title":"","link":"https://reuters.com/empty"},
		{"title":"Stocks slump","description":null,"pubDate":"bad","source_id":"","source_name":"CNBC","link":"https://cnbc.com/b"}
	]}`
	cfg := Provider{
		ID:           "newsdata",
		Type:         ProviderTypeNewsData,
		SourceURL:    "https://newsdata.io/api/1/news",
		APIKey:       "k",
		APIKeyParam:  "apikey",
		RegionParam:  "country",
		RegionValues: map[string]string{"us": "us"},
	}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://newsdata.io/api/1/news?apikey=k&country=us": {body: []byte(body)},
	}}

	got, err := NewNewsDataFetcher(client).Fetch(context.Background(), cfg, Query{Region: domain.RegionUS})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles (empty title dropped), got %d", len(got))
	}
	first := got[0]
	if first.Source != "reuters" || first.URL != "https://reuters.com/a" || first.ImageURL != "https://img.example.org/a.png" {
		t.Fatalf("unexpected first article %+v", first)
	}
	if !first.PublishedAt.Equal(time.Date(2025, 3, 10, 11, 45, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time %v", first.PublishedAt)
	}
	if got[1].Source != "CNBC" || !got[1].PublishedAt.IsZero() {
		t.Fatalf("unexpected second article %+v", got[1])
	}
}

func TestNewsDataFetcherMissingResults(t *testing.T) {
	cfg := Provider{ID: "newsdata", Type: ProviderTypeNewsData, SourceURL: "https://newsdata.io/api/1/news"}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://newsdata.io/api/1/news": {body: []byte(`{"status":"success"}`)},
	}}

	_, err := NewNewsDataFetcher(client).Fetch(context.Background(), cfg, Query{})
	if !errors.Is(err, ErrPayloadShape) {
		t.Fatalf("expected ErrPayloadShape, got %v", err)
	}
}

func TestNewsDataFetcherReportedError(t *testing.T) {
	cfg := Provider{ID: "newsdata", Type: ProviderTypeNewsData, SourceURL: "https://newsdata.io/api/1/news"}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://newsdata.io/api/1/news": {body: []byte(`{"status":"error","results":{"message":"quota","code":"RateLimitExceeded"}}`)},
	}}

	_, err := NewNewsDataFetcher(client).Fetch(context.Background(), cfg, Query{})
	if err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected provider error message, got %v", err)
	}
}

func TestNewsDataFetcherRejectsOtherType(t *testing.T) {
	_, err := NewNewsDataFetcher(&mockHTTPClient{t: t}).Fetch(context.Background(), Provider{ID: "x", Type: "rss"}, Query{})
	if err == nil {
		t.Fatal("expected error for mismatched provider type")
	}
}

func TestTheNewsAPIFetcherFetchSuccess(t *testing.T) {
	const body = `{"meta":{"found":1},"data":[
		{"title":"Euro slides","description":"","snippet":"Currency traders react","published_at":"2025-03-10T11:45:00.000000Z","source":"ft.com","image_url":"","url":"https://ft.com/a"}
	]}`
	cfg := Provider{
		ID:           "thenewsapi",
		Type:         ProviderTypeTheNewsAPI,
		SourceURL:    "https://api.thenewsapi.com/v1/news/all",
		APIKey:       "tok",
		APIKeyParam:  "api_token",
		Params:       map[string]string{"limit": "20"},
		RegionParam:  "search",
		RegionValues: map[string]string{"europe": "europe", "all": ""},
		FromParam:    "published_after",
	}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://api.thenewsapi.com/v1/news/all?api_token=tok&limit=20&published_after=2025-03-01&search=europe": {body: []byte(body)},
	}}

	got, err := NewTheNewsAPIFetcher(client).Fetch(context.Background(), cfg, Query{
		Region: domain.RegionEurope,
		Range:  domain.DateRange{From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Description != "Currency traders react" {
		t.Fatalf("expected snippet fallback, got %q", got[0].Description)
	}
	if got[0].Source != "ft.com" {
		t.Fatalf("unexpected source %q", got[0].Source)
	}
}

func TestTheNewsAPIFetcherErrorEnvelope(t *testing.T) {
	cfg := Provider{ID: "tna", Type: ProviderTypeTheNewsAPI, SourceURL: "https://api.thenewsapi.com/v1/news/all"}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://api.thenewsapi.com/v1/news/all": {body: []byte(`{"error":{"code":"invalid_api_token","message":"Invalid token"}}`)},
	}}
	if _, err := NewTheNewsAPIFetcher(client).Fetch(context.Background(), cfg, Query{}); err == nil {
		t.Fatal("expected error envelope to fail the provider")
	}
}

func TestNewsAPIFetcherSkipsRemoved(t *testing.T) {
	const body = `{"status":"ok","totalResults":2,"articles":[
		{"source":{"id":null,"name":"Bloomberg"},"title":"Oil jumps","description":"Brent up","url":"https://bloomberg.com/a","urlToImage":"https://img.example.org/o.png","publishedAt":"2025-03-10T11:45:00Z"},
		{"source":{"name":""},"title":"[Removed]","url":"https://removed.com"}
	]}`
	cfg := Provider{ID: "newsapi", Type: ProviderTypeNewsAPI, SourceURL: "https://newsapi.org/v2/top-headlines"}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://newsapi.org/v2/top-headlines": {body: []byte(body)},
	}}

	got, err := NewNewsAPIFetcher(client).Fetch(context.Background(), cfg, Query{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].Source != "Bloomberg" || got[0].ImageURL != "https://img.example.org/o.png" {
		t.Fatalf("unexpected articles %+v", got)
	}
}

func TestFetchFailsOnNon2xx(t *testing.T) {
	cfg := Provider{ID: "newsapi", Type: ProviderTypeNewsAPI, SourceURL: "https://newsapi.org/v2/top-headlines"}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://newsapi.org/v2/top-headlines": {body: []byte("oops"), statusCode: http.StatusTooManyRequests},
	}}
	_, err := NewNewsAPIFetcher(client).Fetch(context.Background(), cfg, Query{})
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFetchFailsOnMalformedBody(t *testing.T) {
	cfg := Provider{ID: "newsapi", Type: ProviderTypeNewsAPI, SourceURL: "https://newsapi.org/v2/top-headlines"}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://newsapi.org/v2/top-headlines": {body: []byte("<html>")},
	}}
	if _, err := NewNewsAPIFetcher(client).Fetch(context.Background(), cfg, Query{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchPropagatesTransportError(t *testing.T) {
	cfg := Provider{ID: "newsapi", Type: ProviderTypeNewsAPI, SourceURL: "https://newsapi.org/v2/top-headlines"}
	client := &mockHTTPClient{t: t, err: errors.New("connection refused")}
	if _, err := NewNewsAPIFetcher(client).Fetch(context.Background(), cfg, Query{}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestRSSFetcherParsesFeed(t *testing.T) {
	const feed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Markets Wire</title>
    <item>
      <title>Treasury yields rise</title>
      <link>https://wire.example.org/a</link>
      <description>Bonds sell off</description>
      <pubDate>Mon, 10 Mar 2025 11:45:00 +0000</pubDate>
      <enclosure url="https://wire.example.org/a.jpg" type="image/jpeg" length="1"/>
    </item>
    <item>
      <title></title>
      <link>https://wire.example.org/b</link>
    </item>
  </channel>
</rss>`
	cfg := Provider{
		ID:           "wire",
		Type:         ProviderTypeRSS,
		SourceURL:    "https://wire.example.org/rss",
		RegionValues: map[string]string{"asia": "https://wire.example.org/asia.rss"},
	}
	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://wire.example.org/rss":      {body: []byte(feed)},
		"https://wire.example.org/asia.rss": {body: []byte(feed)},
	}}

	got, err := NewRSSFetcher(client).Fetch(context.Background(), cfg, Query{Region: domain.RegionUS})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	a := got[0]
	if a.Source != "Markets Wire" || a.ImageURL != "https://wire.example.org/a.jpg" || a.Description != "Bonds sell off" {
		t.Fatalf("unexpected article %+v", a)
	}
	if !a.PublishedAt.Equal(time.Date(2025, 3, 10, 11, 45, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", a.PublishedAt)
	}

	if _, err := NewRSSFetcher(client).Fetch(context.Background(), cfg, Query{Region: domain.RegionAsia}); err != nil {
		t.Fatalf("Fetch asia: %v", err)
	}
	if last := client.calls[len(client.calls)-1]; last != "https://wire.example.org/asia.rss" {
		t.Fatalf("expected regional feed url, got %s", last)
	}
}

func TestGoogleNewsFetcherFollowsIndexes(t *testing.T) {
	indexXML := []byte(`
<sitemapindex>
  <sitemap><loc>https://example.com/leaf.xml</loc></sitemap>
  <sitemap><loc> </loc></sitemap>
</sitemapindex>`)
	leafXML := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:news="http://www.google.com/schemas/sitemap-news/0.9"
        xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">
  <url>
    <loc>https://example.com/article</loc>
    <news:news>
      <news:publication><news:name>Example Times</news:name></news:publication>
      <news:publication_date>2024-01-01T00:00:00Z</news:publication_date>
      <news:title>Copper rallies</news:title>
    </news:news>
    <image:image><image:loc>https://example.com/a.jpg</image:loc></image:image>
  </url>
  <url>
    <loc>https://example.com/untitled</loc>
  </url>
</urlset>`)

	client := &mockHTTPClient{t: t, responses: map[string]mockResponse{
		"https://example.com/root.xml": {body: indexXML},
		"https://example.com/leaf.xml": {body: leafXML},
	}}
	cfg := Provider{ID: "times", Name: "Times", Type: ProviderTypeGoogleNews, SourceURL: "https://example.com/root.xml"}

	got, err := NewGoogleNewsFetcher(client).Fetch(context.Background(), cfg, Query{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 titled article, got %d", len(got))
	}
	a := got[0]
	if a.Title != "Copper rallies" || a.Source != "Example Times" || a.ImageURL != "https://example.com/a.jpg" {
		t.Fatalf("unexpected article %+v", a)
	}
	if !a.PublishedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", a.PublishedAt)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 HTTP calls (index + leaf), got %d", len(client.calls))
	}
}

func TestResponseSnippet(t *testing.T) {
	if got := responseSnippet(nil); got != "<empty>" {
		t.Errorf("expected <empty>, got %q", got)
	}
	long := strings.Repeat("x", 600)
	if got := responseSnippet([]byte(long)); len(got) != 515 {
		t.Errorf("expected truncated snippet, got len %d", len(got))
	}
}
