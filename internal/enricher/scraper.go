package enricher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/internal/normalizer"
	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB

	defaultMaxPages    = 10
	defaultConcurrency = 4
)

// ImageScraper fills missing article images from the page's og:image tag.
type ImageScraper struct {
	client      httpclient.Client
	log         logger.Logger
	maxPages    int
	concurrency int
}

// NewImageScraper constructs a scraper. maxPages caps how many article pages are
// fetched per call; non-positive values use the default.
func NewImageScraper(client httpclient.Client, log logger.Logger, maxPages int) *ImageScraper {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &ImageScraper{
		client:      client,
		log:         logger.Ensure(log),
		maxPages:    maxPages,
		concurrency: defaultConcurrency,
	}
}

// Enrich returns a copy of articles where image-less entries (up to maxPages of
// them) carry the og:image of their page. Failures leave the article untouched.
func (s *ImageScraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)
	if s == nil || s.client == nil {
		return out
	}

	targets := make([]int, 0, s.maxPages)
	for i, art := range out {
		if len(targets) == s.maxPages {
			break
		}
		if art.ImageURL == "" && art.URL != "" {
			targets = append(targets, i)
		}
	}

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for _, idx := range targets {
		select {
		case <-ctx.Done():
			wg.Wait()
			return out
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			img, err := s.fetchImage(ctx, out[idx].URL)
			if err != nil {
				s.log.DebugObj("article image scrape failed", "metadata_error", map[string]any{
					"url":   out[idx].URL,
					"error": err.Error(),
				})
				return
			}
			out[idx].ImageURL = img
		}(idx)
	}
	wg.Wait()

	return out
}

func (s *ImageScraper) fetchImage(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.client.Get(ctx, pageURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	ref, err := metaImage(body)
	if err != nil {
		return "", err
	}
	img := resolveURL(ref, pageURL)
	if !normalizer.ValidURL(img) {
		return "", fmt.Errorf("no usable og:image")
	}
	return img, nil
}

// metaImage returns the page's og:image, falling back to twitter:image.
func metaImage(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	for _, sel := range []string{`meta[property="og:image"]`, `meta[name="twitter:image"]`} {
		if val, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val), nil
		}
	}
	return "", nil
}

// resolveURL makes ref absolute against base; empty or unparsable input yields "".
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
