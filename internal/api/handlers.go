package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/feed"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/analysis"
)

type handlers struct {
	feeds    FeedService
	analyzer Analyzer
	log      logger.Logger
}

// feedRequest is the body of POST /fetch-news and the query of GET /api/news.
type feedRequest struct {
	Region string `json:"region" form:"region"`
	From   string `json:"from" form:"from"`
	To     string `json:"to" form:"to"`
}

type analyzeRequest struct {
	Question string   `json:"question"`
	VIX      *float64 `json:"vix"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) fetchNews(c *gin.Context) {
	var req feedRequest
	// An empty body means the default region.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorFeed("invalid JSON payload: "+err.Error()))
		return
	}
	h.serveFeed(c, req)
}

func (h *handlers) listNews(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorFeed(err.Error()))
		return
	}
	h.serveFeed(c, req)
}

func (h *handlers) serveFeed(c *gin.Context, body feedRequest) {
	from, err := parseDate(body.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorFeed(fmt.Sprintf("invalid from date: %v", err)))
		return
	}
	to, err := parseDate(body.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorFeed(fmt.Sprintf("invalid to date: %v", err)))
		return
	}

	resp, err := h.feeds.GetFeed(c.Request.Context(), feed.Request{Region: body.Region, From: from, To: to})
	c.JSON(feedStatus(err), resp)
}

func (h *handlers) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}

	resp, err := h.analyzer.Analyze(c.Request.Context(), analysis.Request{Question: req.Question, VIX: req.VIX})
	switch {
	case errors.Is(err, analysis.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.log.WarnObj("analysis backend call failed", "analysis_error", map[string]any{"error": err.Error()})
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis backend unavailable"})
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// feedStatus maps feed errors to HTTP codes. Outages are reported in the body
// with 200; only caller mistakes and internal faults change the status.
func feedStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, feed.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorFeed(msg string) domain.FeedResponse {
	return domain.FeedResponse{Articles: []domain.Article{}, Error: msg}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp; empty means unset.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
