// Package analysis talks to the external chat-analysis backend that comments on
// a selected news item.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

// DefaultVIX is sent when the caller supplies no (or a zero) volatility reading.
const DefaultVIX = 20.0

// ErrEmptyQuestion is returned before any network call when the question is blank.
var ErrEmptyQuestion = errors.New("analysis question is empty")

// Request is the caller-facing analysis query.
type Request struct {
	Question string   `json:"question"`
	VIX      *float64 `json:"vix,omitempty"`
}

// Response is the caller-facing analysis result.
type Response struct {
	Analysis   string   `json:"analysis"`
	Category   string   `json:"category"`
	Token      float64  `json:"token"`
	EventCount int      `json:"eventCount"`
	Alpha      *float64 `json:"alpha,omitempty"`
	Beta       *float64 `json:"beta,omitempty"`
	Relevant   bool     `json:"relevant"`
}

// The backend speaks Spanish field names.
type wireRequest struct {
	Question string  `json:"pregunta"`
	VIX      float64 `json:"vix"`
}

type wireResponse struct {
	Analysis   string   `json:"analisis"`
	Category   string   `json:"categoria"`
	Token      float64  `json:"token"`
	EventCount int      `json:"num_eventos"`
	Alpha      *float64 `json:"alpha"`
	Beta       *float64 `json:"beta"`
	Relevant   bool     `json:"relevante"`
}

// Client calls POST {baseURL}/analyze.
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient builds a client for baseURL with the given call bound.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpclient.NewRestyHTTPClient(timeout),
	}
}

// Analyze forwards req and translates the reply. Non-2xx replies are errors.
func (c *Client) Analyze(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, ErrEmptyQuestion
	}
	vix := DefaultVIX
	if req.VIX != nil && *req.VIX != 0 {
		vix = *req.VIX
	}

	var out wireResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(wireRequest{Question: question, VIX: vix}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.baseURL + "/analyze")
	if err != nil {
		return Response{}, fmt.Errorf("analysis request: %w", err)
	}
	if resp.IsError() {
		body := resp.Body()
		if len(body) > 256 {
			body = body[:256]
		}
		return Response{}, fmt.Errorf("analysis backend returned status %d: %s", resp.StatusCode(), strings.TrimSpace(string(body)))
	}

	return Response{
		Analysis:   out.Analysis,
		Category:   out.Category,
		Token:      out.Token,
		EventCount: out.EventCount,
		Alpha:      out.Alpha,
		Beta:       out.Beta,
		Relevant:   out.Relevant,
	}, nil
}
