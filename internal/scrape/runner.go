// Package scrape orchestrates a full run over the configured sources.
package scrape

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/listing"
	"github.com/bipwatch/crawler/internal/metrics"
)

// HostWaiter throttles requests per host before entry enrichment.
type HostWaiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Options configures a Runner.
type Options struct {
	// Extractors maps a source kind to the extractor handling it.
	Extractors map[bip.SourceKind]listing.Extractor
	// Enricher fills attachments per entry. Nil disables enrichment.
	Enricher bip.Enricher
	// Limiter paces enrichment fetches per host. Nil disables pacing.
	Limiter HostWaiter
	// Workers bounds concurrent entry enrichment.
	Workers int
	Logger  *zap.Logger
}

// Runner walks the configured sources one at a time and enriches the
// extracted entries concurrently. A failing source never aborts the run;
// it is logged, counted, and skipped.
type Runner struct {
	opts Options
}

// New builds a Runner.
func New(opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{opts: opts}
}

// Run extracts and enriches entries from every source, in configuration
// order. Entries keep their discovery order within a source.
func (r *Runner) Run(ctx context.Context, sources []bip.Source) []bip.Entry {
	var all []bip.Entry
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			r.opts.Logger.Warn("run canceled", zap.Error(err))
			return all
		}

		extractor, ok := r.opts.Extractors[src.Kind]
		if !ok {
			metrics.ObserveSourceFailure(src.Name)
			r.opts.Logger.Warn("no extractor for source kind",
				zap.String("source", src.Name),
				zap.String("kind", string(src.Kind)))
			continue
		}

		batch, err := extractor.Extract(ctx, src)
		if err != nil {
			metrics.ObserveSourceFailure(src.Name)
			r.opts.Logger.Warn("source failed",
				zap.String("source", src.Name),
				zap.Error(err))
			continue
		}

		entries := complete(batch.Entries)
		if len(entries) == 0 {
			r.opts.Logger.Info("source produced no entries", zap.String("source", src.Name))
			continue
		}

		entries = r.enrichAll(ctx, entries)
		r.opts.Logger.Info("source scraped",
			zap.String("source", src.Name),
			zap.Int("entries", len(entries)))
		all = append(all, entries...)
	}
	return all
}

// enrichAll runs enrichment over a bounded worker pool. Results land in a
// slot per entry so discovery order survives the concurrency.
func (r *Runner) enrichAll(ctx context.Context, entries []bip.Entry) []bip.Entry {
	if r.opts.Enricher == nil {
		return entries
	}

	results := make([]bip.Entry, len(entries))
	sem := make(chan struct{}, r.opts.Workers)
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, entry bip.Entry) {
			defer wg.Done()
			defer func() { <-sem }()

			if r.opts.Limiter != nil {
				if err := r.opts.Limiter.Wait(ctx, entry.URL); err != nil {
					results[i] = entry
					return
				}
			}
			results[i] = r.opts.Enricher.Enrich(ctx, entry)
		}(i, entry)
	}
	wg.Wait()
	return results
}

// complete drops entries missing a title or URL. Extractors should never
// emit them, but a partial entry must not reach the payload.
func complete(entries []bip.Entry) []bip.Entry {
	out := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.URL) == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
