// Package pdftext extracts plain text from PDF documents.
//
// Extraction runs in two tiers. The first tier reads the text layer of a
// digitally born PDF. Scanned documents carry no text layer, so when the
// first tier yields too little text the extractor escalates to OCR over
// rasterized pages. The longer of the two results wins.
package pdftext

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/metrics"
)

const (
	// minDigitalTextLen is the threshold below which a digital extraction
	// is considered a scan and OCR is attempted.
	minDigitalTextLen = 50

	// maxTextLen caps the text stored per document.
	maxTextLen = 5000

	truncationMarker   = "... [treść skrócona]"
	failurePlaceholder = "[nie udało się odczytać treści dokumentu]"
)

// Extractor implements bip.TextExtractor over PDF bytes.
type Extractor struct {
	logger *zap.Logger

	// digital and ocr are swappable for tests.
	digital func(data []byte) (string, error)
	ocr     func(ctx context.Context, data []byte) (string, error)
}

// New builds an Extractor using the built-in digital and OCR tiers.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		logger:  logger,
		digital: digitalText,
		ocr:     ocrText,
	}
}

// ExtractText returns the document text, escalating to OCR when the text
// layer is missing or too thin. It never returns an empty string; documents
// that defeat both tiers yield a placeholder so callers can tell "unreadable"
// apart from "no attachment".
func (e *Extractor) ExtractText(ctx context.Context, data []byte) string {
	text, err := e.digital(data)
	if err != nil {
		e.logger.Warn("digital text extraction failed", zap.Error(err))
		text = ""
	}
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) < minDigitalTextLen {
		metrics.ObserveOCREscalation()
		ocrText, ocrErr := e.ocr(ctx, data)
		if ocrErr != nil {
			e.logger.Warn("ocr extraction failed", zap.Error(ocrErr))
		} else {
			ocrText = strings.TrimSpace(ocrText)
			if utf8.RuneCountInString(ocrText) > utf8.RuneCountInString(text) {
				text = ocrText
			}
		}
	}

	if text == "" {
		return failurePlaceholder
	}
	return truncate(text, maxTextLen)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + truncationMarker
}
