package enricher

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte         { return s.body }
func (s stubHTTPResponse) StatusCode() int      { return s.statusCode }
func (s stubHTTPResponse) Header(string) string { return "" }

// stubHTTPClient returns canned responses per URL.
type stubHTTPClient struct {
	mu    sync.Mutex
	resps map[string]stubHTTPResponse
	calls int
}

func (s *stubHTTPClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	resp, ok := s.resps[url]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return resp, nil
}

func TestMetaImagePrefersOGTag(t *testing.T) {
	html := []byte(`
<html>
  <head>
    <meta name="twitter:image" content="/img/tw.png">
    <meta property="og:image" content="/img/og.png">
  </head>
</html>`)

	img, err := metaImage(html)
	if err != nil {
		t.Fatalf("metaImage: %v", err)
	}
	if img != "/img/og.png" {
		t.Fatalf("metaImage = %q, want og:image", img)
	}
}

func TestMetaImageFallsBackToTwitter(t *testing.T) {
	img, err := metaImage([]byte(`<html><head><meta property="og:image" content=" "><meta name="twitter:image" content="/img/tw.png"></head></html>`))
	if err != nil {
		t.Fatalf("metaImage: %v", err)
	}
	if img != "/img/tw.png" {
		t.Fatalf("metaImage = %q, want twitter:image", img)
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/img.png", "https://example.com/articles/1")
	if got != "https://example.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}

	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestImageScraperFillsMissingImages(t *testing.T) {
	client := &stubHTTPClient{resps: map[string]stubHTTPResponse{
		"https://reuters.com/a": {statusCode: 200, body: []byte(`<meta property="og:image" content="/a.jpg">`)},
		"https://reuters.com/b": {statusCode: 404},
	}}
	scraper := NewImageScraper(client, nil, 5)

	in := []domain.Article{
		{ID: "a", URL: "https://reuters.com/a"},
		{ID: "b", URL: "https://reuters.com/b"},
		{ID: "c", URL: "https://reuters.com/c", ImageURL: "https://img.example.org/c.png"},
	}
	out := scraper.Enrich(context.Background(), in)

	if out[0].ImageURL != "https://reuters.com/a.jpg" {
		t.Fatalf("expected resolved og:image, got %q", out[0].ImageURL)
	}
	if out[1].ImageURL != "" {
		t.Fatalf("failed scrape should leave image empty, got %q", out[1].ImageURL)
	}
	if out[2].ImageURL != "https://img.example.org/c.png" {
		t.Fatalf("existing image overwritten: %q", out[2].ImageURL)
	}
	if in[0].ImageURL != "" {
		t.Fatalf("input slice mutated")
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 page fetches, got %d", client.calls)
	}
}

func TestImageScraperRespectsPageCap(t *testing.T) {
	client := &stubHTTPClient{resps: map[string]stubHTTPResponse{}}
	scraper := NewImageScraper(client, nil, 1)

	scraper.Enrich(context.Background(), []domain.Article{
		{URL: "https://reuters.com/a"},
		{URL: "https://reuters.com/b"},
	})
	if client.calls != 1 {
		t.Fatalf("expected 1 page fetch, got %d", client.calls)
	}
}

func TestImageScraperLimitsBody(t *testing.T) {
	body := bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)
	client := &stubHTTPClient{resps: map[string]stubHTTPResponse{
		"https://reuters.com/a": {statusCode: 200, body: body},
	}}
	out := NewImageScraper(client, nil, 1).Enrich(context.Background(), []domain.Article{{URL: "https://reuters.com/a"}})
	if out[0].ImageURL != "" {
		t.Fatalf("expected no image from metadata-less body")
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"  plain   text  ":                   "plain text",
		"<p>Gold <b>rallies</b></p>":         "Gold rallies",
		"Stocks &amp; bonds":                 "Stocks & bonds",
		"<div>a<script>x()</script> b</div>": "a b",
	}
	for in, want := range cases {
		if got := PlainText(in); got != want {
			t.Errorf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}
