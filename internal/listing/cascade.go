// Package listing turns one listing page (or feed) into an ordered batch
// of entries. Registry-style pages go through an ordered strategy cascade;
// feeds and plain news lists have dedicated extractors.
package listing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/metrics"
)

// Extractor turns one configured source into an ordered batch. Cascade,
// Feed, and NewsList all satisfy it; the orchestrator picks one per source
// kind.
type Extractor interface {
	Extract(ctx context.Context, source bip.Source) (bip.Batch, error)
}

// Strategy is one extraction tier. Attempt returns the entries it could
// extract from the page; an empty result means the cascade moves on. The
// seen set is shared across tiers of a single invocation so no two entries
// share a canonical URL.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, page Page, source bip.Source, seen SeenSet) ([]bip.Entry, error)
}

// Cascade runs registry-style strategies strictly in order, stopping at the
// first tier that produces at least one entry.
type Cascade struct {
	fetcher    bip.Fetcher
	timeout    time.Duration
	strategies []Strategy
	logger     *zap.Logger
}

// NewCascade wires the default tier order: static table, dynamic-table
// escalation, recently-added blocks, generic link fallback.
func NewCascade(fetcher bip.Fetcher, timeout time.Duration, logger *zap.Logger) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cascade{
		fetcher: fetcher,
		timeout: timeout,
		strategies: []Strategy{
			&StaticTable{},
			&DynamicTable{Fetcher: fetcher, Timeout: timeout, Logger: logger},
			&RecentBlocks{},
			&GenericLinks{},
		},
		logger: logger,
	}
}

// Extract fetches the listing page and runs the cascade. The dedup set is
// created here and dies with this call.
func (c *Cascade) Extract(ctx context.Context, source bip.Source) (bip.Batch, error) {
	resp, err := c.fetcher.Fetch(ctx, bip.FetchRequest{URL: source.ListingURL, Timeout: c.timeout})
	if err != nil {
		return bip.Batch{}, fmt.Errorf("listing %s: %w", source.Name, err)
	}

	page, err := ParsePage(resp.URL, resp.Body)
	if err != nil {
		return bip.Batch{}, fmt.Errorf("listing %s: %w", source.Name, err)
	}

	seen := NewSeenSet()
	for _, strategy := range c.strategies {
		entries, err := strategy.Attempt(ctx, page, source, seen)
		if err != nil {
			// A broken tier degrades to the next one, never the whole source.
			c.logger.Warn("listing strategy failed",
				zap.String("source", source.Name),
				zap.String("strategy", strategy.Name()),
				zap.Error(err))
			continue
		}
		if len(entries) == 0 {
			continue
		}
		c.logger.Debug("listing strategy produced entries",
			zap.String("source", source.Name),
			zap.String("strategy", strategy.Name()),
			zap.Int("count", len(entries)))
		metrics.ObserveEntries(source.Name, strategy.Name(), len(entries))
		return bip.Batch{Source: source, Entries: entries}, nil
	}

	return bip.Batch{Source: source, Entries: nil}, nil
}

// newEntry builds an entry with the invariant fields set. Attachments start
// empty (non-nil) so a pre-enrichment payload serializes as [].
func newEntry(source bip.Source, title, url, published string) bip.Entry {
	return bip.Entry{
		Title:       title,
		URL:         url,
		Published:   published,
		SourceName:  source.Name,
		Attachments: []bip.Attachment{},
	}
}
