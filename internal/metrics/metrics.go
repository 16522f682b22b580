// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal          *prometheus.CounterVec
	fetchDurationSeconds  *prometheus.HistogramVec
	entriesExtractedTotal *prometheus.CounterVec
	attachmentsTotal      *prometheus.CounterVec
	ocrEscalationsTotal   prometheus.Counter
	sourceFailuresTotal   *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bipwatch_fetches_total",
				Help: "Total resource fetches, labeled by host and status.",
			},
			[]string{"host", "status"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bipwatch_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by host.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"host"},
		)

		entriesExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bipwatch_entries_extracted_total",
				Help: "Entries produced per source, labeled by strategy.",
			},
			[]string{"source", "strategy"},
		)

		attachmentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bipwatch_attachments_total",
				Help: "Attachment candidates processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		ocrEscalationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bipwatch_ocr_escalations_total",
				Help: "Documents whose digital text was too short and went to OCR.",
			},
		)

		sourceFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bipwatch_source_failures_total",
				Help: "Source-level listing failures that were logged and skipped.",
			},
			[]string{"source"},
		)
	})
}

// SanitizeHost extracts a lowercase hostname, or "unknown" for garbage.
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one fetch attempt.
func ObserveFetch(rawURL, status string, duration time.Duration) {
	if fetchesTotal == nil {
		return
	}
	host := SanitizeHost(rawURL)
	fetchesTotal.WithLabelValues(host, status).Inc()
	fetchDurationSeconds.WithLabelValues(host).Observe(duration.Seconds())
}

// ObserveEntries records entries produced by a cascade strategy.
func ObserveEntries(source, strategy string, count int) {
	if entriesExtractedTotal == nil || count <= 0 {
		return
	}
	entriesExtractedTotal.WithLabelValues(source, strategy).Add(float64(count))
}

// ObserveAttachment records one attachment candidate outcome
// ("accepted", "skipped", "failed").
func ObserveAttachment(outcome string) {
	if attachmentsTotal == nil {
		return
	}
	attachmentsTotal.WithLabelValues(outcome).Inc()
}

// ObserveOCREscalation counts a digital-to-OCR escalation.
func ObserveOCREscalation() {
	if ocrEscalationsTotal == nil {
		return
	}
	ocrEscalationsTotal.Inc()
}

// ObserveSourceFailure counts a skipped source.
func ObserveSourceFailure(source string) {
	if sourceFailuresTotal == nil {
		return
	}
	sourceFailuresTotal.WithLabelValues(source).Inc()
}
