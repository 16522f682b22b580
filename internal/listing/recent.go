package listing

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bipwatch/crawler/internal/bip"
)

// recentBlockSelectors cover the "Ostatnio dodane" card/row/article shapes
// used by Drupal-based BIP themes (Dziwnów, Kamień Pomorski and similar).
const recentBlockSelectors = ".view-content .views-row, .node, .aktualnosc, [class*='last-added'], article, .item"

const minRecentTitleLen = 5

// RecentBlocks extracts entries from recently-added card blocks: first
// anchor is link+title, and the block's full text is searched for a
// "D month YYYY, HH:MM" date.
type RecentBlocks struct{}

// Name identifies the tier in logs and metrics.
func (r *RecentBlocks) Name() string { return "recent-blocks" }

// Attempt scans each matching block for its leading anchor.
func (r *RecentBlocks) Attempt(_ context.Context, page Page, source bip.Source, seen SeenSet) ([]bip.Entry, error) {
	var entries []bip.Entry
	limit := source.EntryCap()

	page.Doc.Find(recentBlockSelectors).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		link := block.Find("a[href]").First()
		if link.Length() == 0 {
			return true
		}
		title := strings.TrimSpace(link.Text())
		if len([]rune(title)) < minRecentTitleLen {
			return true
		}
		href, _ := link.Attr("href")
		url, ok := Resolve(page.URL, href)
		if !ok || !seen.MarkIfNew(url) {
			return true
		}

		published, _ := DateFromBlock(block.Text())
		entries = append(entries, newEntry(source, title, url, published))
		return len(entries) < limit
	})

	return entries, nil
}
