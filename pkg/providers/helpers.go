package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPayloadShape marks a provider body that decoded but lacked the expected fields.
var ErrPayloadShape = errors.New("unexpected payload shape")

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// download issues the GET and rejects any non-2xx status.
func download(ctx context.Context, client HTTPClient, url, providerID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", providerID, err)
	}

	body := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("%s returned status %d body: %s", providerID, resp.StatusCode(), responseSnippet(body))
	}

	return body, nil
}

// fetchJSON downloads cfg's request URL and decodes the body into out.
func fetchJSON(ctx context.Context, client HTTPClient, cfg Provider, q Query, out any) error {
	reqURL, err := cfg.RequestURL(q)
	if err != nil {
		return err
	}

	body, err := download(ctx, client, reqURL, cfg.ID, Headers(cfg))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", cfg.ID, err)
	}
	return nil
}

// decodeList decodes a JSON array field, distinguishing a missing field from an empty list.
func decodeList[T any](providerID, field string, raw json.RawMessage) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, fmt.Errorf("%s response missing %q: %w", providerID, field, ErrPayloadShape)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s response field %q is not a list: %w", providerID, field, ErrPayloadShape)
	}
	return out, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// parseTimestamp accepts the timestamp formats used by the supported providers.
// Values without a zone are read as UTC. Unparseable input yields the zero time.
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
