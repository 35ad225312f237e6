// Package api exposes the feed and the analysis proxy over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/feed"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/analysis"
)

// FeedService builds feeds on demand.
type FeedService interface {
	GetFeed(ctx context.Context, req feed.Request) (domain.FeedResponse, error)
}

// Analyzer answers questions about a news item.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Response, error)
}

// NewRouter constructs the gin engine. analyzer may be nil, in which case
// /analyze is not registered.
func NewRouter(feeds FeedService, analyzer Analyzer, log logger.Logger) *gin.Engine {
	log = logger.Ensure(log)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors())

	h := &handlers{feeds: feeds, analyzer: analyzer, log: log}
	r.GET("/healthz", h.health)
	r.POST("/fetch-news", h.fetchNews)
	r.GET("/api/news", h.listNews)
	if analyzer != nil {
		r.POST("/analyze", h.analyze)
	}
	return r
}

// cors mirrors the permissive headers browsers expect from the feed endpoint
// and short-circuits preflight requests.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.DebugObj("http request served", "http_request", map[string]any{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	}
}
