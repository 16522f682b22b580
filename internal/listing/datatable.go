package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
)

// DataTables column positions observed on BIP registry-of-changes layouts.
// A site layout change is a one-line fix here.
const (
	colTitle  = 0
	colDate   = 3
	colAuthor = 4
)

// Patterns locating the remote-data endpoint inside inline DataTables
// initialization scripts.
var ajaxURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`["']sAjaxSource["']\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`ajax["']?\s*:\s*\{[^}]*?url["']?\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`ajax["']?\s*:\s*["']([^"']+)["']`),
}

// DynamicTable is the escalation tier for client-side-rendered registry
// tables: the visible table is an empty shell and the rows live behind a
// JSON endpoint. It only activates when such a shell is present, regardless
// of what earlier tiers produced.
type DynamicTable struct {
	Fetcher bip.Fetcher
	Timeout time.Duration
	Logger  *zap.Logger
}

// Name identifies the tier in logs and metrics.
func (d *DynamicTable) Name() string { return "dynamic-table" }

// Attempt fires only when the page holds a table with no body rows. It then
// extracts the remote-data URL from script content, fetches it as the
// browser widget would, and maps rows positionally.
func (d *DynamicTable) Attempt(ctx context.Context, page Page, source bip.Source, seen SeenSet) ([]bip.Entry, error) {
	if !hasEmptyTableShell(page.Doc) {
		return nil, nil
	}

	endpoint := findAjaxEndpoint(page)
	if endpoint == "" {
		return nil, nil
	}

	headers := http.Header{}
	headers.Set("X-Requested-With", "XMLHttpRequest")
	headers.Set("Referer", source.ListingURL)

	resp, err := d.Fetcher.Fetch(ctx, bip.FetchRequest{URL: endpoint, Timeout: d.Timeout, Headers: headers})
	if err != nil {
		return nil, fmt.Errorf("dynamic table data: %w", err)
	}

	rows, err := decodeDataTableRows(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dynamic table data: %w", err)
	}

	var entries []bip.Entry
	limit := source.EntryCap()
	for _, row := range rows {
		entry, ok := decodeRegistryRow(row, page, source)
		if !ok || !seen.MarkIfNew(entry.URL) {
			continue
		}
		entries = append(entries, entry)
		if len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// hasEmptyTableShell reports whether some table exists with no data rows.
func hasEmptyTableShell(doc *goquery.Document) bool {
	shell := false
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
			return row.Find("td").Length() > 0
		}).Length() == 0 {
			shell = true
			return false
		}
		return true
	})
	return shell
}

// findAjaxEndpoint scans inline script content for the widget's remote-data
// URL and resolves it against the page.
func findAjaxEndpoint(page Page) string {
	var endpoint string
	page.Doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if text == "" {
			return true
		}
		for _, pattern := range ajaxURLPatterns {
			m := pattern.FindStringSubmatch(text)
			if len(m) < 2 {
				continue
			}
			if resolved, ok := Resolve(page.URL, m[1]); ok {
				endpoint = resolved
				return false
			}
		}
		return true
	})
	return endpoint
}

// dataTableBody matches both spellings of the DataTables JSON envelope.
type dataTableBody struct {
	Data   [][]string `json:"data"`
	AAData [][]string `json:"aaData"`
}

func decodeDataTableRows(body []byte) ([][]string, error) {
	var decoded dataTableBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode json rows: %w", err)
	}
	if len(decoded.Data) > 0 {
		return decoded.Data, nil
	}
	return decoded.AAData, nil
}

// decodeRegistryRow maps one positional row onto an entry. The title cell
// may itself be markup holding an anchor; when it is plain text the listing
// page URL stands in as a placeholder.
func decodeRegistryRow(row []string, page Page, source bip.Source) (bip.Entry, bool) {
	if len(row) <= colTitle {
		return bip.Entry{}, false
	}

	title, entryURL := decodeTitleCell(row[colTitle], page)
	if title == "" {
		return bip.Entry{}, false
	}
	if entryURL == "" {
		entryURL = Canonicalize(page.URL)
	}

	published := ""
	if len(row) > colDate {
		published = strings.TrimSpace(row[colDate])
	}

	entry := newEntry(source, title, entryURL, published)
	if len(row) > colAuthor {
		if author := strings.TrimSpace(row[colAuthor]); author != "" {
			synthesized := "Opublikował(a): " + author
			entry.Summary = synthesized
			entry.Content = synthesized
		}
	}
	return entry, true
}

func decodeTitleCell(cell string, page Page) (title, entryURL string) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", ""
	}
	if !strings.Contains(cell, "<") {
		return cell, ""
	}

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return cell, ""
	}
	link := frag.Find("a[href]").First()
	if link.Length() == 0 {
		return strings.TrimSpace(frag.Text()), ""
	}

	title = strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	// Path-absolute hrefs in the JSON belong to the site root, not to the
	// listing path.
	if resolved, ok := Resolve(page.SiteRoot(), href); ok {
		entryURL = resolved
	}
	return title, entryURL
}
