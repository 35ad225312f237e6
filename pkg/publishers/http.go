package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

// HeaderArticleID carries the article id on webhook deliveries so receivers
// can drop duplicates without parsing the body.
const HeaderArticleID = "X-Article-ID"

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

// webhookPublisher delivers each event as a JSON request to a fixed endpoint.
type webhookPublisher struct {
	id     string
	target HTTPConfig
	rc     *resty.Client
	log    logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	rc := httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second).
		SetHeaders(cfg.HTTP.Headers).
		SetHeader("Content-Type", "application/json")

	return &webhookPublisher{id: cfg.ID, target: *cfg.HTTP, rc: rc, log: logger.Ensure(log)}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish sends evt and treats any status outside 2xx as a failed delivery.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := w.rc.R().
		SetContext(ctx).
		SetHeader(HeaderArticleID, evt.Article.ID).
		SetBody(evt).
		Execute(w.target.Method, w.target.URL)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", w.id, err)
	}
	if !resp.IsSuccess() {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("webhook %s: status %d: %s", w.id, resp.StatusCode(), strings.TrimSpace(string(body)))
	}

	w.log.DebugObj("webhook delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"article_id":   evt.Article.ID,
		"status":       resp.StatusCode(),
	})
	return nil
}
