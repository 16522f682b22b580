package listing

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bipwatch/crawler/internal/bip"
)

// minGenericTitleLen is the tightest threshold in the cascade: the fallback
// sees every anchor on the page, so short link texts are almost always
// navigation.
const minGenericTitleLen = 10

// registryPathFragment excludes links back into the registry listing itself.
const registryPathFragment = "rejestr-zmian"

// GenericLinks is the last registry tier: any sufficiently-titled anchor in
// the page's main content region becomes an entry with no date.
type GenericLinks struct{}

// Name identifies the tier in logs and metrics.
func (g *GenericLinks) Name() string { return "generic-links" }

// Attempt scans main/article/#content (falling back to body) for anchors.
func (g *GenericLinks) Attempt(_ context.Context, page Page, source bip.Source, seen SeenSet) ([]bip.Entry, error) {
	main := mainContent(page.Doc)
	if main.Length() == 0 {
		return nil, nil
	}

	var entries []bip.Entry
	limit := source.EntryCap()

	main.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		title := strings.TrimSpace(link.Text())
		if len([]rune(title)) < minGenericTitleLen {
			return true
		}
		href, _ := link.Attr("href")
		url, ok := Resolve(page.URL, href)
		if !ok || strings.Contains(strings.ToLower(url), registryPathFragment) {
			return true
		}
		if !seen.MarkIfNew(url) {
			return true
		}
		entries = append(entries, newEntry(source, title, url, ""))
		return len(entries) < limit
	})

	return entries, nil
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"main", "article", "#content"} {
		if region := doc.Find(sel).First(); region.Length() > 0 {
			return region
		}
	}
	return doc.Find("body").First()
}
