package bip

import (
	"errors"
	"fmt"
)

// FetchError reports a failed retrieval. StatusCode is zero for transport
// failures (timeout, refused connection, DNS).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Sentinel errors raised by enrichment stages. All of them downgrade to a
// logged skip at the smallest granularity that owns them.
var (
	// ErrContentTypeMismatch means a document download did not declare the
	// expected content type.
	ErrContentTypeMismatch = errors.New("unexpected content type")

	// ErrDocumentDecode means the document bytes could not be parsed.
	ErrDocumentDecode = errors.New("document decode failed")

	// ErrRecognition means the OCR engine failed on a rasterized page.
	ErrRecognition = errors.New("text recognition failed")

	// ErrNoListingURL rejects a source missing its listing locator. This is
	// the only fatal condition; it is checked before any fetch.
	ErrNoListingURL = errors.New("source has no listing URL")
)
