package listing

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Page is one fetched listing page ready for strategy traversal.
type Page struct {
	// URL is the listing page's own address; relative hrefs resolve
	// against it.
	URL *url.URL
	Doc *goquery.Document
}

// ParsePage builds a Page from raw HTML bytes.
func ParsePage(rawURL string, body []byte) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse listing url %s: %w", rawURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse listing html: %w", err)
	}
	return Page{URL: u, Doc: doc}, nil
}

// SiteRoot returns scheme://host/ for resolving path-absolute hrefs that
// must not inherit the listing path.
func (p Page) SiteRoot() *url.URL {
	return &url.URL{Scheme: p.URL.Scheme, Host: p.URL.Host, Path: "/"}
}
