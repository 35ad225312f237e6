package providers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// ErrMissingAPIKey is returned when a provider requires a key that is not configured.
var ErrMissingAPIKey = errors.New("api key not configured")

const defaultDateLayout = "2006-01-02"

// Query carries the per-request filters handed to every fetcher.
type Query struct {
	Region domain.Region
	Range  domain.DateRange
}

// RequestURL assembles the provider request from its static params, API key,
// region mapping and date range.
func (p Provider) RequestURL(q Query) (string, error) {
	base, err := url.Parse(p.SourceURL)
	if err != nil {
		return "", fmt.Errorf("parse source_url for provider %q: %w", p.ID, err)
	}

	values := base.Query()
	for k, v := range p.Params {
		values.Set(k, v)
	}

	if p.APIKeyParam != "" {
		key := p.ResolveAPIKey()
		if key == "" {
			return "", fmt.Errorf("provider %q: %w", p.ID, ErrMissingAPIKey)
		}
		values.Set(p.APIKeyParam, key)
	}

	if p.RegionParam != "" {
		if v := p.RegionValue(q.Region); v != "" {
			values.Set(p.RegionParam, v)
		}
	}

	layout := p.DateLayout
	if layout == "" {
		layout = defaultDateLayout
	}
	if p.FromParam != "" && !q.Range.From.IsZero() {
		values.Set(p.FromParam, q.Range.From.UTC().Format(layout))
	}
	if p.ToParam != "" && !q.Range.To.IsZero() {
		values.Set(p.ToParam, q.Range.To.UTC().Format(layout))
	}

	base.RawQuery = values.Encode()
	return base.String(), nil
}

// RegionValue maps a region filter to the provider's native query value.
// Unmapped regions yield "" so the parameter is omitted.
func (p Provider) RegionValue(region domain.Region) string {
	if len(p.RegionValues) == 0 {
		return ""
	}
	return p.RegionValues[strings.ToLower(string(region))]
}
