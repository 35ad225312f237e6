package domain

import "time"

// Domain contains core models shared by the feed pipeline, the API and the notifier.

// Category is the topic bucket an article is classified into.
type Category string

const (
	CategoryStocks      Category = "Stocks"
	CategoryForex       Category = "Forex"
	CategoryCommodities Category = "Commodities"
	CategoryBonds       Category = "Bonds"
	CategoryEnergy      Category = "Energy"
	CategoryCrypto      Category = "Crypto"
	CategoryMarkets     Category = "Markets"
)

// Categories lists every category an article may carry.
func Categories() []Category {
	return []Category{
		CategoryStocks,
		CategoryForex,
		CategoryCommodities,
		CategoryBonds,
		CategoryEnergy,
		CategoryCrypto,
		CategoryMarkets,
	}
}

// Sentiment is the coarse tone label of an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Region is the caller-owned geographic filter key.
type Region string

const (
	RegionAll    Region = "all"
	RegionUS     Region = "us"
	RegionChina  Region = "china"
	RegionAsia   Region = "asia"
	RegionEurope Region = "europe"
)

// Regions lists the supported region filters.
func Regions() []Region {
	return []Region{RegionAll, RegionUS, RegionChina, RegionAsia, RegionEurope}
}

// Valid reports whether r is a supported region key.
func (r Region) Valid() bool {
	for _, known := range Regions() {
		if r == known {
			return true
		}
	}
	return false
}

// DateRange is an optional publish window forwarded to providers that support it.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (d DateRange) IsZero() bool {
	return d.From.IsZero() && d.To.IsZero()
}

// RawArticle is a provider record after field-name translation but before normalization.
type RawArticle struct {
	Title       string
	Description string
	PublishedAt time.Time
	Source      string
	ImageURL    string
	URL         string
}

// Article is the canonical, classified record served in the feed.
type Article struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Category          Category  `json:"category"`
	Sentiment         Sentiment `json:"sentiment"`
	PublishedRelative string    `json:"time"`
	PublishedAt       time.Time `json:"publishedAt,omitzero"`
	Source            string    `json:"source"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	URL               string    `json:"url,omitempty"`
	Region            Region    `json:"region"`
	Provider          string    `json:"provider,omitempty"`
}

// ProviderResult is the tagged outcome of one provider call within a single aggregation pass.
type ProviderResult struct {
	ProviderID   string
	ProviderName string
	Articles     []RawArticle
	Err          error
}

// OK reports whether the provider call succeeded.
func (r ProviderResult) OK() bool { return r.Err == nil }

// FeedResponse is the payload returned to feed callers.
type FeedResponse struct {
	Articles []Article `json:"articles"`
	Error    string    `json:"error,omitempty"`
}
