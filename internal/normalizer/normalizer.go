// Package normalizer turns provider records into canonical articles.
package normalizer

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

// blockedURLFragments are syndication artifacts and loopback hosts that never make a usable link.
var blockedURLFragments = [...]string{
	"feedburner.com",
	"feedproxy.google.com",
	"localhost",
	"127.0.0.1",
	"0.0.0.0",
	"[::1]",
}

var leadingNumber = regexp.MustCompile(`\d+`)

// Normalize converts a raw provider record into a canonical article stamped with region.
// Category and sentiment are left for the classifier.
func Normalize(raw domain.RawArticle, providerID, providerName string, region domain.Region, now time.Time) domain.Article {
	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = providerName
	}
	link := strings.TrimSpace(raw.URL)

	return domain.Article{
		ID:                ArticleID(link, raw.Title),
		Title:             strings.TrimSpace(raw.Title),
		Description:       strings.TrimSpace(raw.Description),
		PublishedRelative: RelativeTime(raw.PublishedAt, now),
		PublishedAt:       raw.PublishedAt,
		Source:            source,
		ImageURL:          strings.TrimSpace(raw.ImageURL),
		URL:               link,
		Region:            region,
		Provider:          providerID,
	}
}

// ArticleID hashes the article URL, falling back to the title for link-less records.
func ArticleID(link, title string) string {
	key := strings.TrimSpace(link)
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(title))
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// UnknownTime labels an article without a publication timestamp. It carries no
// number, so BucketValue ranks it after every dated article.
const UnknownTime = "unknown"

// RelativeTime renders the elapsed time between published and now as a coarse bucket label.
// Future timestamps clamp to zero.
func RelativeTime(published, now time.Time) string {
	if published.IsZero() {
		return UnknownTime
	}
	diffMinutes := 0
	if d := now.Sub(published); d > 0 {
		diffMinutes = int(d / time.Minute)
	}

	switch {
	case diffMinutes < 60:
		return fmt.Sprintf("%d min ago", diffMinutes)
	case diffMinutes < 1440:
		return fmt.Sprintf("%d hours ago", diffMinutes/60)
	default:
		return fmt.Sprintf("%d days ago", diffMinutes/1440)
	}
}

// BucketValue extracts the first number embedded in a relative-time label.
// Labels without a parseable number return math.MaxInt so they sort last.
func BucketValue(relative string) int {
	match := leadingNumber.FindString(relative)
	if match == "" {
		return math.MaxInt
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// ValidURL reports whether raw is an absolute http(s) URL outside the block-list.
func ValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	lower := strings.ToLower(raw)
	for _, frag := range blockedURLFragments {
		if strings.Contains(lower, frag) {
			return false
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
