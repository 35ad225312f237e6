// Package enricher cleans and completes article records using the article HTML.
package enricher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from provider descriptions (several APIs return HTML
// snippets) and collapses whitespace. Input without markup is returned trimmed.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	doc.Find("script, style").Remove()
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
