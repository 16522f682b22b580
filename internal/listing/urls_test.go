package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolveRelativeHref(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://bip.example.pl/rejestr-zmian")
	got, ok := Resolve(base, "uchwala-nr-1")
	require.True(t, ok)
	require.Equal(t, "https://bip.example.pl/uchwala-nr-1", got)

	got, ok = Resolve(base, "/ogloszenia/2026")
	require.True(t, ok)
	require.Equal(t, "https://bip.example.pl/ogloszenia/2026", got)
}

func TestResolveRejectsJunk(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://bip.example.pl/")
	for _, href := range []string{"", "#", "#top", "javascript:void(0)", "JavaScript:go()", "mailto:urzad@example.pl"} {
		_, ok := Resolve(base, href)
		require.False(t, ok, "href %q should be rejected", href)
	}
}

func TestCanonicalizeDropsFragmentAndDefaultPort(t *testing.T) {
	t.Parallel()

	u := mustParse(t, "HTTPS://BIP.Example.PL:443/path?b=2&a=1#sekcja")
	require.Equal(t, "https://bip.example.pl/path?a=1&b=2", Canonicalize(u))
}

func TestSeenSetMarkIfNew(t *testing.T) {
	t.Parallel()

	seen := NewSeenSet()
	require.True(t, seen.MarkIfNew("https://bip.example.pl/a"))
	require.False(t, seen.MarkIfNew("https://bip.example.pl/a"))
	require.True(t, seen.MarkIfNew("https://bip.example.pl/b"))
	require.False(t, seen.MarkIfNew(""))
}

func TestTwoAnchorsSameCanonicalURLProduceOneMark(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://bip.example.pl/lista")
	seen := NewSeenSet()

	first, ok := Resolve(base, "/doc/1#a")
	require.True(t, ok)
	second, ok := Resolve(base, "https://bip.example.pl/doc/1")
	require.True(t, ok)

	require.True(t, seen.MarkIfNew(first))
	require.False(t, seen.MarkIfNew(second), "same canonical URL must dedupe")
}
