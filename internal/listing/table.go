package listing

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bipwatch/crawler/internal/bip"
)

// minTableTitleLen suppresses navigation noise in table rows.
const minTableTitleLen = 5

// StaticTable extracts entries from server-rendered registry tables
// (Zmieniono | Tytuł | Użytkownik | Informacja and similar layouts).
type StaticTable struct{}

// Name identifies the tier in logs and metrics.
func (s *StaticTable) Name() string { return "static-table" }

// Attempt walks every table row that carries an anchor: anchor text becomes
// the title, its href the canonical URL, and the row's other cells are
// scanned for a date-shaped string.
func (s *StaticTable) Attempt(_ context.Context, page Page, source bip.Source, seen SeenSet) ([]bip.Entry, error) {
	var entries []bip.Entry
	limit := source.EntryCap()

	page.Doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find("a[href]").First()
		if link.Length() == 0 {
			return true
		}
		title := strings.TrimSpace(link.Text())
		if len([]rune(title)) < minTableTitleLen {
			return true
		}
		href, _ := link.Attr("href")
		url, ok := Resolve(page.URL, href)
		if !ok || !seen.MarkIfNew(url) {
			return true
		}

		published := rowDate(row, link)
		entries = append(entries, newEntry(source, title, url, published))
		return len(entries) < limit
	})

	return entries, nil
}

// rowDate scans the row's cells, skipping the one holding the entry anchor,
// and returns the first date-shaped cell text.
func rowDate(row, link *goquery.Selection) string {
	var published string
	linkNode := link.Get(0)
	row.Find("td, th").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if cell.Find("a").IsNodes(linkNode) {
			return true
		}
		if d, ok := DateFromCell(cell.Text()); ok {
			published = d
			return false
		}
		return true
	})
	return published
}
