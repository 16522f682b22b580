// Package attachments enriches entries with the text of linked documents.
package attachments

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/listing"
	"github.com/bipwatch/crawler/internal/metrics"
)

// attachmentKeywords mark links that lead to documents even when the href
// alone is not conclusive. Source-locale vocabulary.
var attachmentKeywords = []string{"załącznik", "pobierz", "treść"}

const pdfContentType = "application/pdf"

// Discoverer visits an entry's detail page and converts qualifying document
// links into attachments. Failures at any candidate degrade to a logged
// skip; the entry always comes back, enriched or not.
type Discoverer struct {
	fetcher   bip.Fetcher
	extractor bip.TextExtractor
	timeout   time.Duration
	logger    *zap.Logger
}

var _ bip.Enricher = (*Discoverer)(nil)

// New builds a Discoverer.
func New(fetcher bip.Fetcher, extractor bip.TextExtractor, timeout time.Duration, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{fetcher: fetcher, extractor: extractor, timeout: timeout, logger: logger}
}

// Enrich returns the entry with attachments populated. An entry whose own
// URL is already a document is left alone.
func (d *Discoverer) Enrich(ctx context.Context, entry bip.Entry) bip.Entry {
	if isPDFURL(entry.URL) {
		return entry
	}

	resp, err := d.fetcher.Fetch(ctx, bip.FetchRequest{URL: entry.URL, Timeout: d.timeout})
	if err != nil {
		d.logger.Warn("detail page fetch failed",
			zap.String("source", entry.SourceName),
			zap.String("entry", entry.URL),
			zap.Error(err))
		return entry
	}

	candidates, err := d.findCandidates(resp.URL, resp.Body)
	if err != nil {
		d.logger.Warn("detail page parse failed",
			zap.String("source", entry.SourceName),
			zap.String("entry", entry.URL),
			zap.Error(err))
		return entry
	}

	for _, cand := range candidates {
		att, err := d.download(ctx, cand)
		if err != nil {
			metrics.ObserveAttachment("failed")
			d.logger.Warn("attachment skipped",
				zap.String("source", entry.SourceName),
				zap.String("entry", entry.URL),
				zap.String("attachment", cand.url),
				zap.Error(err))
			continue
		}
		metrics.ObserveAttachment("accepted")
		entry.Attachments = append(entry.Attachments, att)
	}
	return entry
}

// candidate is one qualifying document link before download.
type candidate struct {
	name string
	url  string
}

// findCandidates scans every anchor on the detail page. A link qualifies if
// its resolved href ends in .pdf, or its text carries an attachment keyword
// while the href mentions pdf. Candidates are deduped by absolute URL.
func (d *Discoverer) findCandidates(pageURL string, body []byte) ([]candidate, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse detail url %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse detail html: %w", err)
	}

	var candidates []candidate
	seen := listing.NewSeenSet()

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		text := strings.TrimSpace(link.Text())

		resolved, ok := listing.Resolve(base, href)
		if !ok {
			return
		}
		if !isPDFURL(resolved) && !keywordCandidate(text, href) {
			return
		}
		if !seen.MarkIfNew(resolved) {
			return
		}

		name := text
		if name == "" {
			name = path.Base(mustPath(resolved))
		}
		candidates = append(candidates, candidate{name: name, url: resolved})
	})

	return candidates, nil
}

// download fetches one candidate and validates it is really a PDF before
// running text extraction.
func (d *Discoverer) download(ctx context.Context, cand candidate) (bip.Attachment, error) {
	resp, err := d.fetcher.Fetch(ctx, bip.FetchRequest{URL: cand.url, Timeout: d.timeout})
	if err != nil {
		return bip.Attachment{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return bip.Attachment{}, &bip.FetchError{URL: cand.url, StatusCode: resp.StatusCode}
	}
	if mediaType(resp.ContentType) != pdfContentType {
		return bip.Attachment{}, fmt.Errorf("%w: %s returned %q", bip.ErrContentTypeMismatch, cand.url, resp.ContentType)
	}

	return bip.Attachment{
		Name:        cand.name,
		URL:         cand.url,
		TextContent: d.extractor.ExtractText(ctx, resp.Body),
		Size:        len(resp.Body),
	}, nil
}

func isPDFURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func keywordCandidate(text, href string) bool {
	if !strings.Contains(strings.ToLower(href), "pdf") {
		return false
	}
	lowerText := strings.ToLower(text)
	for _, kw := range attachmentKeywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(mt))
}

func mustPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
