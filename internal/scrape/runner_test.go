package scrape

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/listing"
)

type fakeExtractor struct {
	entries []bip.Entry
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, source bip.Source) (bip.Batch, error) {
	if f.err != nil {
		return bip.Batch{}, f.err
	}
	out := make([]bip.Entry, len(f.entries))
	copy(out, f.entries)
	for i := range out {
		out[i].SourceName = source.Name
	}
	return bip.Batch{Source: source, Entries: out}, nil
}

type markingEnricher struct {
	calls atomic.Int64
}

func (m *markingEnricher) Enrich(_ context.Context, entry bip.Entry) bip.Entry {
	m.calls.Add(1)
	entry.Content = "wzbogacony: " + entry.Title
	return entry
}

func entriesNamed(titles ...string) []bip.Entry {
	out := make([]bip.Entry, 0, len(titles))
	for _, title := range titles {
		out = append(out, bip.Entry{
			Title:       title,
			URL:         "https://bip.example.pl/" + title,
			Attachments: []bip.Attachment{},
		})
	}
	return out
}

func TestRunKeepsDiscoveryOrderAcrossWorkers(t *testing.T) {
	t.Parallel()

	enricher := &markingEnricher{}
	r := New(Options{
		Extractors: map[bip.SourceKind]listing.Extractor{
			bip.KindGenericList: &fakeExtractor{entries: entriesNamed("a", "b", "c", "d", "e")},
		},
		Enricher: enricher,
		Workers:  4,
	})

	got := r.Run(context.Background(), []bip.Source{
		{Name: "Gmina", Kind: bip.KindGenericList, ListingURL: "https://bip.example.pl"},
	})

	require.Len(t, got, 5)
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		require.Equal(t, want, got[i].Title)
		require.Equal(t, "wzbogacony: "+want, got[i].Content)
		require.Equal(t, "Gmina", got[i].SourceName)
	}
	require.EqualValues(t, 5, enricher.calls.Load())
}

func TestRunIsolatesFailingSource(t *testing.T) {
	t.Parallel()

	r := New(Options{
		Extractors: map[bip.SourceKind]listing.Extractor{
			bip.KindGenericList:     &fakeExtractor{err: errors.New("timeout")},
			bip.KindDynamicRegistry: &fakeExtractor{entries: entriesNamed("ok")},
		},
	})

	got := r.Run(context.Background(), []bip.Source{
		{Name: "Zepsuta", Kind: bip.KindGenericList, ListingURL: "https://a.example.pl"},
		{Name: "Dziala", Kind: bip.KindDynamicRegistry, ListingURL: "https://b.example.pl"},
	})

	require.Len(t, got, 1)
	require.Equal(t, "ok", got[0].Title)
	require.Equal(t, "Dziala", got[0].SourceName)
}

func TestRunSkipsUnknownKind(t *testing.T) {
	t.Parallel()

	r := New(Options{Extractors: map[bip.SourceKind]listing.Extractor{}})
	got := r.Run(context.Background(), []bip.Source{
		{Name: "X", Kind: "nieznany", ListingURL: "https://x.example.pl"},
	})
	require.Empty(t, got)
}

func TestRunDropsPartialEntries(t *testing.T) {
	t.Parallel()

	entries := entriesNamed("pelny")
	entries = append(entries,
		bip.Entry{Title: "", URL: "https://bip.example.pl/bez-tytulu"},
		bip.Entry{Title: "bez adresu", URL: "  "},
	)
	r := New(Options{
		Extractors: map[bip.SourceKind]listing.Extractor{
			bip.KindGenericList: &fakeExtractor{entries: entries},
		},
	})

	got := r.Run(context.Background(), []bip.Source{
		{Name: "Gmina", Kind: bip.KindGenericList, ListingURL: "https://bip.example.pl"},
	})
	require.Len(t, got, 1)
	require.Equal(t, "pelny", got[0].Title)
}

func TestRunWithoutEnricherReturnsEntriesUnchanged(t *testing.T) {
	t.Parallel()

	r := New(Options{
		Extractors: map[bip.SourceKind]listing.Extractor{
			bip.KindFeed: &fakeExtractor{entries: entriesNamed("rss")},
		},
	})

	got := r.Run(context.Background(), []bip.Source{
		{Name: "Kanal", Kind: bip.KindFeed, ListingURL: "https://bip.example.pl/rss"},
	})
	require.Len(t, got, 1)
	require.Empty(t, got[0].Content)
}
