package feed

import (
	"sort"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/classifier"
	"github.com/samvad-hq/market-news-desk/internal/config"
	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/enricher"
	"github.com/samvad-hq/market-news-desk/internal/normalizer"
)

// Aggregator merges provider results into one filtered, classified, ordered feed.
type Aggregator struct {
	classifier classifier.Classifier
	sortMode   string
	clean      func(string) string
	now        func() time.Time
}

// NewAggregator builds an aggregator for the given sort mode (config.SortModeTimestamp
// or config.SortModeBucket). Descriptions are reduced to plain text before classification.
func NewAggregator(sortMode string) *Aggregator {
	if sortMode != config.SortModeBucket {
		sortMode = config.SortModeTimestamp
	}
	return &Aggregator{
		classifier: classifier.New(),
		sortMode:   sortMode,
		clean:      enricher.PlainText,
		now:        time.Now,
	}
}

// Aggregate drops crypto and invalid-URL records, normalizes and classifies the
// rest, deduplicates by article id and sorts. It never returns nil.
func (a *Aggregator) Aggregate(results []domain.ProviderResult, region domain.Region) []domain.Article {
	now := a.now()
	out := make([]domain.Article, 0)
	seen := make(map[string]struct{})

	for _, res := range results {
		if !res.OK() {
			continue
		}
		for _, raw := range res.Articles {
			raw.Description = a.clean(raw.Description)
			if a.classifier.IsCrypto(raw.Title, raw.Description) {
				continue
			}
			if !normalizer.ValidURL(raw.URL) {
				continue
			}

			art := normalizer.Normalize(raw, res.ProviderID, res.ProviderName, region, now)
			if _, dup := seen[art.ID]; dup {
				continue
			}
			seen[art.ID] = struct{}{}

			art.Category = a.classifier.Categorize(art.Title, art.Description)
			art.Sentiment = a.classifier.Sentiment(art.Title, art.Description)
			out = append(out, art)
		}
	}

	a.sort(out)
	return out
}

func (a *Aggregator) sort(articles []domain.Article) {
	if a.sortMode == config.SortModeBucket {
		sort.SliceStable(articles, func(i, j int) bool {
			return normalizer.BucketValue(articles[i].PublishedRelative) < normalizer.BucketValue(articles[j].PublishedRelative)
		})
		return
	}

	// Newest first; undated records go last.
	sort.SliceStable(articles, func(i, j int) bool {
		ti, tj := articles[i].PublishedAt, articles[j].PublishedAt
		if ti.IsZero() != tj.IsZero() {
			return tj.IsZero()
		}
		return ti.After(tj)
	})
}
