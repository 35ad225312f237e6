package publishers

import (
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// Event is the payload published downstream for one newly seen article.
type Event struct {
	ProviderID   string         `json:"provider_id"`
	ProviderName string         `json:"provider_name"`
	Region       domain.Region  `json:"region"`
	Article      domain.Article `json:"article"`
	CollectedAt  time.Time      `json:"collected_at"`
}

// NewEvent wraps an aggregated article for publishing.
func NewEvent(article domain.Article, providerName string, collectedAt time.Time) Event {
	return Event{
		ProviderID:   article.Provider,
		ProviderName: providerName,
		Region:       article.Region,
		Article:      article,
		CollectedAt:  collectedAt.UTC(),
	}
}

// attributes are the routing headers attached by queue and topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"provider_id": e.ProviderID,
		"region":      string(e.Region),
		"category":    string(e.Article.Category),
		"sentiment":   string(e.Article.Sentiment),
	}
}
