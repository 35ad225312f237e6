// Package classifier maps article text to a topic category and a sentiment label.
//
// The keyword tables are fixed rule sets built by constructor functions. Every
// exported function takes its rules as arguments or through a Classifier value,
// so nothing here depends on mutable package state.
package classifier

import (
	"regexp"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// CategoryRule associates a keyword pattern with the category it selects.
type CategoryRule struct {
	Category domain.Category
	Pattern  *regexp.Regexp
}

// SentimentRules holds the positive and negative keyword sets.
type SentimentRules struct {
	Positive []string
	Negative []string
}

// CryptoRules holds the keywords that exclude an article from the feed. They
// match anywhere in the lower-cased text, so "eth" also catches "Tether".
type CryptoRules struct {
	Substrings []string
}

// DefaultCategoryRules returns the ordered category table. Order is the tie-break:
// the first matching rule wins.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: domain.CategoryCrypto, Pattern: regexp.MustCompile(`bitcoin|crypto|blockchain|ethereum`)},
		{Category: domain.CategoryStocks, Pattern: regexp.MustCompile(`stock|equity|shares|dow|nasdaq`)},
		{Category: domain.CategoryForex, Pattern: regexp.MustCompile(`forex|currency|exchange rate|dollar|euro`)},
		{Category: domain.CategoryCommodities, Pattern: regexp.MustCompile(`gold|silver|commodity|oil|copper`)},
		{Category: domain.CategoryBonds, Pattern: regexp.MustCompile(`bond|treasury|yield`)},
		{Category: domain.CategoryEnergy, Pattern: regexp.MustCompile(`energy|petroleum|gas`)},
	}
}

// DefaultSentimentRules returns the bag-of-words sentiment table.
func DefaultSentimentRules() SentimentRules {
	return SentimentRules{
		Positive: []string{"surge", "gain", "rise", "jump", "rally", "boost", "soar", "record high"},
		Negative: []string{"fall", "drop", "plunge", "decline", "crash", "slump", "loss", "tumble"},
	}
}

// DefaultCryptoRules returns the product-policy crypto exclusion table.
func DefaultCryptoRules() CryptoRules {
	return CryptoRules{
		Substrings: []string{"bitcoin", "crypto", "blockchain", "ethereum", "btc", "eth", "cryptocurrency"},
	}
}

// Categorize returns the first category whose pattern matches the lower-cased
// title and description, or Markets when none does.
func Categorize(rules []CategoryRule, title, description string) domain.Category {
	text := joinLower(title, description)
	for _, rule := range rules {
		if rule.Pattern != nil && rule.Pattern.MatchString(text) {
			return rule.Category
		}
	}
	return domain.CategoryMarkets
}

// Sentiment labels text positive or negative only when exactly one keyword class
// is present; both or neither yield neutral.
func Sentiment(rules SentimentRules, title, description string) domain.Sentiment {
	text := joinLower(title, description)
	hasPositive := containsAny(text, rules.Positive)
	hasNegative := containsAny(text, rules.Negative)

	switch {
	case hasPositive && !hasNegative:
		return domain.SentimentPositive
	case hasNegative && !hasPositive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// IsCrypto reports whether the text mentions any crypto keyword.
func IsCrypto(rules CryptoRules, title, description string) bool {
	return containsAny(joinLower(title, description), rules.Substrings)
}

// Classifier bundles a complete rule set.
type Classifier struct {
	categories []CategoryRule
	sentiment  SentimentRules
	crypto     CryptoRules
}

// New returns a Classifier using the default tables.
func New() Classifier {
	return Classifier{
		categories: DefaultCategoryRules(),
		sentiment:  DefaultSentimentRules(),
		crypto:     DefaultCryptoRules(),
	}
}

func (c Classifier) Categorize(title, description string) domain.Category {
	return Categorize(c.categories, title, description)
}

func (c Classifier) Sentiment(title, description string) domain.Sentiment {
	return Sentiment(c.sentiment, title, description)
}

func (c Classifier) IsCrypto(title, description string) bool {
	return IsCrypto(c.crypto, title, description)
}

func joinLower(title, description string) string {
	return strings.ToLower(title + " " + description)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}
