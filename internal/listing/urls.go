package listing

import (
	"net/url"
	"strings"
)

// Resolve turns an href from a page into its canonical absolute form,
// resolved against base. Empty hrefs, bare fragments, and javascript:/
// mailto: schemes are rejected. The returned string is the uniqueness key
// used for dedup within one extraction.
func Resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return Canonicalize(abs), true
}

// Canonicalize standardizes an absolute URL to avoid duplicates: lowercase
// scheme and host, default ports removed, fragment dropped, query encoding
// normalized.
func Canonicalize(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	if c.Scheme == "http" {
		c.Host = strings.TrimSuffix(c.Host, ":80")
	}
	if c.Scheme == "https" {
		c.Host = strings.TrimSuffix(c.Host, ":443")
	}
	c.Fragment = ""
	c.RawQuery = c.Query().Encode()
	return c.String()
}

// SeenSet tracks canonical URLs within a single cascade invocation. It is
// owned by the caller and passed into every strategy; nothing at package
// level remembers URLs between runs.
type SeenSet map[string]struct{}

// NewSeenSet returns an empty set.
func NewSeenSet() SeenSet {
	return make(SeenSet)
}

// MarkIfNew stores the URL if it has not been seen before and returns true.
func (s SeenSet) MarkIfNew(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := s[url]; ok {
		return false
	}
	s[url] = struct{}{}
	return true
}
