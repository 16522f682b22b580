package listing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bipwatch/crawler/internal/bip"
)

const feedURL = "https://bip.example.pl/rss.xml"

func feedSource(maxEntries int) bip.Source {
	return bip.Source{
		Name:       "Gmina Feed",
		Kind:       bip.KindFeed,
		ListingURL: feedURL,
		MaxEntries: maxEntries,
	}
}

func rssDocument(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>BIP Gminy</title>
    <link>https://bip.example.pl/</link>
` + items + `
  </channel>
</rss>`
}

func TestFeedExtractMapsItems(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.responses[feedURL] = bip.FetchResponse{
		URL:         feedURL,
		StatusCode:  200,
		ContentType: "application/rss+xml",
		Body: []byte(rssDocument(`
    <item>
      <title>Obwieszczenie o sesji rady</title>
      <link>/ogloszenia/sesja-rady</link>
      <description>Sesja odbędzie się w lutym.</description>
      <pubDate>Wed, 11 Feb 2026 14:42:00 +0100</pubDate>
    </item>
    <item>
      <title>Nabór na stanowisko</title>
      <link>https://bip.example.pl/nabor</link>
      <description>Szczegóły w ogłoszeniu.</description>
    </item>`)),
	}

	feed := NewFeed(fetcher, 0, nil)
	batch, err := feed.Extract(context.Background(), feedSource(10))
	require.NoError(t, err)
	require.Len(t, batch.Entries, 2)

	first := batch.Entries[0]
	require.Equal(t, "Obwieszczenie o sesji rady", first.Title)
	require.Equal(t, "https://bip.example.pl/ogloszenia/sesja-rady", first.URL, "relative links resolve against the feed's site link")
	require.Equal(t, "Sesja odbędzie się w lutym.", first.Summary)
	require.Equal(t, "Sesja odbędzie się w lutym.", first.Content, "content falls back to summary")
	require.Contains(t, first.Published, "2026-02-11", "structured date wins, formatted canonically")
	require.Empty(t, first.Attachments)

	second := batch.Entries[1]
	require.Equal(t, "https://bip.example.pl/nabor", second.URL)
	require.Empty(t, second.Published)
}

func TestFeedExtractCapsSummaryAndEntries(t *testing.T) {
	t.Parallel()

	longDesc := strings.Repeat("ą", 600)
	items := ""
	for _, slug := range []string{"a-pierwszy", "b-drugi", "c-trzeci"} {
		items += `
    <item>
      <title>Wpis ` + slug + `</title>
      <link>https://bip.example.pl/` + slug + `</link>
      <description>` + longDesc + `</description>
    </item>`
	}

	fetcher := newStubFetcher()
	fetcher.responses[feedURL] = bip.FetchResponse{
		URL: feedURL, StatusCode: 200, ContentType: "application/rss+xml",
		Body: []byte(rssDocument(items)),
	}

	feed := NewFeed(fetcher, 0, nil)
	batch, err := feed.Extract(context.Background(), feedSource(2))
	require.NoError(t, err)
	require.Len(t, batch.Entries, 2, "feed order truncated at max_entries")
	require.Equal(t, "Wpis a-pierwszy", batch.Entries[0].Title)
	require.Equal(t, feedSummaryCap, len([]rune(batch.Entries[0].Summary)))
	require.Equal(t, 600, len([]rune(batch.Entries[0].Content)), "content is not truncated here")
}

func TestFeedExtractParseFailure(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.addHTML(feedURL, "this is not a feed")

	feed := NewFeed(fetcher, 0, nil)
	_, err := feed.Extract(context.Background(), feedSource(10))
	require.Error(t, err)
}
