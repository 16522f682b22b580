// Package bip defines core types shared across subsystems.
package bip

import "time"

// SourceKind selects the listing mode used for a source.
type SourceKind string

// Source kinds supported by the orchestrator.
const (
	KindFeed            SourceKind = "feed"
	KindDynamicRegistry SourceKind = "dynamic-registry"
	KindGenericList     SourceKind = "generic-list"
)

// Source describes one configured municipal-disclosure site.
type Source struct {
	Name            string     `json:"name" mapstructure:"name"`
	Kind            SourceKind `json:"kind" mapstructure:"kind"`
	ListingURL      string     `json:"listing_url" mapstructure:"listing_url"`
	MaxEntries      int        `json:"max_entries" mapstructure:"max_entries"`
	DynamicRegistry bool       `json:"dynamic_registry" mapstructure:"dynamic_registry"`
}

// DefaultMaxEntries applies when a source does not set its own cap.
const DefaultMaxEntries = 10

// EntryCap returns the effective per-source entry limit.
func (s Source) EntryCap() int {
	if s.MaxEntries > 0 {
		return s.MaxEntries
	}
	return DefaultMaxEntries
}

// Attachment is the extracted text of one linked document. Immutable once
// constructed.
type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	TextContent string `json:"text_content"`
	Size        int    `json:"size"`
}

// Entry is one discovered notice. Published keeps the source's own date
// presentation text; it is never parsed into a calendar value.
type Entry struct {
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Summary     string       `json:"summary"`
	Content     string       `json:"content"`
	Published   string       `json:"published,omitempty"`
	SourceName  string       `json:"source_name"`
	Attachments []Attachment `json:"attachments"`
}

// Batch is the ordered result of one listing extraction, capped at the
// source's entry limit. Order matches discovery order.
type Batch struct {
	Source  Source
	Entries []Entry
}

// Payload is the JSON document handed to downstream consumers (webhook,
// snapshot file).
type Payload struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
	Instruction string    `json:"instruction"`
}
