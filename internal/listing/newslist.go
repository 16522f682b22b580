package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/metrics"
)

// newsItemSelectors are the common "news item" shapes on BIP front pages,
// tried in order within a single pass.
var newsItemSelectors = []string{
	"article",
	".news-item",
	".ogloszenie",
	".aktualnosc",
	".komunikat",
	"[class*='news']",
	"[class*='ogloszen']",
	".list-item",
	"li a",
}

// minNewsTitleLen is deliberately loose: generic-list sources are curated
// by configuration, so short titles are usually real.
const minNewsTitleLen = 3

// NewsList extracts entries from plain announcement pages with no registry
// semantics.
type NewsList struct {
	Fetcher bip.Fetcher
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewNewsList builds the generic-list extractor.
func NewNewsList(fetcher bip.Fetcher, timeout time.Duration, logger *zap.Logger) *NewsList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsList{Fetcher: fetcher, Timeout: timeout, Logger: logger}
}

// Extract scans the fixed selector list, accepting any anchor with a title
// of at least three characters, deduping by canonical URL.
func (n *NewsList) Extract(ctx context.Context, source bip.Source) (bip.Batch, error) {
	resp, err := n.Fetcher.Fetch(ctx, bip.FetchRequest{URL: source.ListingURL, Timeout: n.Timeout})
	if err != nil {
		return bip.Batch{}, fmt.Errorf("news list %s: %w", source.Name, err)
	}

	page, err := ParsePage(resp.URL, resp.Body)
	if err != nil {
		return bip.Batch{}, fmt.Errorf("news list %s: %w", source.Name, err)
	}

	seen := NewSeenSet()
	var entries []bip.Entry
	limit := source.EntryCap()

	for _, selector := range newsItemSelectors {
		if len(entries) >= limit {
			break
		}
		page.Doc.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			link := el
			if !el.Is("a") {
				link = el.Find("a[href]").First()
			}
			if link.Length() == 0 {
				return true
			}
			title := strings.TrimSpace(link.Text())
			if len([]rune(title)) < minNewsTitleLen {
				return true
			}
			href, exists := link.Attr("href")
			if !exists {
				return true
			}
			url, ok := Resolve(page.URL, href)
			if !ok || !seen.MarkIfNew(url) {
				return true
			}
			entries = append(entries, newEntry(source, title, url, ""))
			return len(entries) < limit
		})
	}

	metrics.ObserveEntries(source.Name, "news-list", len(entries))
	return bip.Batch{Source: source, Entries: entries}, nil
}
