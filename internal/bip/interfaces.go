package bip

import (
	"context"
	"net/http"
	"time"
)

// FetchRequest captures everything needed to fetch one resource.
type FetchRequest struct {
	URL     string
	Timeout time.Duration
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation. Body
// holds raw bytes for binary resources and charset-decoded UTF-8 for text
// resources.
type FetchResponse struct {
	URL         string
	StatusCode  int
	Headers     http.Header
	Body        []byte
	ContentType string
	Duration    time.Duration
}

// Fetcher retrieves a single resource with a bounded timeout and an
// identifying header.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error)
}

// Enricher populates an entry's attachments from its detail page.
type Enricher interface {
	Enrich(ctx context.Context, entry Entry) Entry
}

// TextExtractor recovers text from downloaded document bytes.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) string
}

// Publisher pushes a finished payload to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, payload Payload) error
}

// Sink persists a payload snapshot locally and returns its path.
type Sink interface {
	Save(ctx context.Context, payload Payload) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
