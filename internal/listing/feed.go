package listing

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/metrics"
)

// feedSummaryCap bounds the summary carried into the payload.
const feedSummaryCap = 500

// untitledPlaceholder mirrors what the sites themselves show for nameless
// items.
const untitledPlaceholder = "(bez tytułu)"

// Feed extracts entries from RSS/Atom sources in feed order.
type Feed struct {
	Fetcher bip.Fetcher
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewFeed builds a feed extractor.
func NewFeed(fetcher bip.Fetcher, timeout time.Duration, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{Fetcher: fetcher, Timeout: timeout, Logger: logger}
}

// Extract fetches and parses the feed, mapping each item directly.
func (f *Feed) Extract(ctx context.Context, source bip.Source) (bip.Batch, error) {
	resp, err := f.Fetcher.Fetch(ctx, bip.FetchRequest{URL: source.ListingURL, Timeout: f.Timeout})
	if err != nil {
		return bip.Batch{}, fmt.Errorf("feed %s: %w", source.Name, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return bip.Batch{}, fmt.Errorf("feed %s: parse: %w", source.Name, err)
	}

	base := feedBase(parsed, source.ListingURL)
	limit := source.EntryCap()
	entries := make([]bip.Entry, 0, limit)

	for _, item := range parsed.Items {
		if len(entries) >= limit {
			break
		}
		link := resolveFeedLink(base, item.Link)
		if link == "" {
			continue
		}

		title := item.Title
		if title == "" {
			title = untitledPlaceholder
		}

		summary := truncateRunes(item.Description, feedSummaryCap)
		content := item.Content
		if content == "" {
			content = item.Description
		}

		entry := newEntry(source, title, link, feedPublished(item))
		entry.Summary = summary
		entry.Content = content
		entries = append(entries, entry)
	}

	metrics.ObserveEntries(source.Name, "feed", len(entries))
	return bip.Batch{Source: source, Entries: entries}, nil
}

// feedBase picks the reference for resolving relative item links: the
// feed's own site link when present, else the feed URL.
func feedBase(parsed *gofeed.Feed, feedURL string) *url.URL {
	raw := parsed.Link
	if raw == "" {
		raw = feedURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" {
		base, err = url.Parse(feedURL)
		if err != nil {
			return nil
		}
	}
	return base
}

func resolveFeedLink(base *url.URL, link string) string {
	if link == "" || base == nil {
		return ""
	}
	resolved, ok := Resolve(base, link)
	if !ok {
		return ""
	}
	return resolved
}

// feedPublished prefers the structured date when the feed carries one,
// falling back to the raw text form.
func feedPublished(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.Format(time.RFC3339)
	case item.Published != "":
		return item.Published
	default:
		return item.Updated
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
