package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/market-news-desk/internal/config"
)

func testConfig(t *testing.T, providersYAML string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(providersYAML), 0o644); err != nil {
		t.Fatalf("write providers: %v", err)
	}
	return &config.Config{
		AppName:         "market-news-desk",
		HTTPAddr:        "127.0.0.1:0",
		ProvidersFile:   path,
		ProviderTimeout: time.Second,
		SortMode:        config.SortModeTimestamp,
		AnalysisTimeout: time.Second,
	}
}

func TestServerServesFeedFromRSSProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Wire</title>
<item><title>Treasury yields climb</title><link>https://reuters.com/y</link><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
<item><title>Bitcoin slides</title><link>https://reuters.com/btc</link></item>
</channel></rss>`))
	}))
	defer rss.Close()

	cfg := testConfig(t, "providers:\n  - id: wire\n    type: rss\n    source_url: "+rss.URL+"\n")
	srv, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news?region=us", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Treasury yields climb") || strings.Contains(body, "Bitcoin") {
		t.Fatalf("unexpected feed %s", body)
	}
	if !strings.Contains(body, `"category":"Bonds"`) {
		t.Fatalf("article not classified: %s", body)
	}
}

func TestServerRunShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t, "providers: []\n")
	srv, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not shut down")
	}
}

func TestNewNotifierRejectsBadRegions(t *testing.T) {
	cfg := testConfig(t, "providers: []\n")
	cfg.NotifyRegions = []string{"atlantis"}
	if _, err := NewNotifier(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected region error")
	}
}
