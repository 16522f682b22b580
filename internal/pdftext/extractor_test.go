package pdftext

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func fakeExtractor(digital string, digitalErr error, ocr string, ocrErr error, ocrCalled *bool) *Extractor {
	e := New(nil)
	e.digital = func([]byte) (string, error) { return digital, digitalErr }
	e.ocr = func(context.Context, []byte) (string, error) {
		if ocrCalled != nil {
			*ocrCalled = true
		}
		return ocr, ocrErr
	}
	return e
}

func TestThinTextLayerEscalatesToOCR(t *testing.T) {
	t.Parallel()

	digital := strings.Repeat("a", 40)
	ocr := strings.Repeat("b", 120)
	var called bool
	e := fakeExtractor(digital, nil, ocr, nil, &called)

	got := e.ExtractText(context.Background(), []byte("%PDF"))
	require.True(t, called, "short text layer triggers ocr")
	require.Equal(t, ocr, got, "longer ocr result wins")
}

func TestRichTextLayerSkipsOCR(t *testing.T) {
	t.Parallel()

	digital := strings.Repeat("a", 200)
	var called bool
	e := fakeExtractor(digital, nil, "", errors.New("should not run"), &called)

	got := e.ExtractText(context.Background(), []byte("%PDF"))
	require.False(t, called, "sufficient text layer skips ocr")
	require.Equal(t, digital, got)
}

func TestShorterOCRDoesNotReplaceDigital(t *testing.T) {
	t.Parallel()

	digital := strings.Repeat("a", 40)
	e := fakeExtractor(digital, nil, "krótko", nil, nil)

	got := e.ExtractText(context.Background(), []byte("%PDF"))
	require.Equal(t, digital, got)
}

func TestLongTextIsTruncated(t *testing.T) {
	t.Parallel()

	e := fakeExtractor(strings.Repeat("ż", 6000), nil, "", errors.New("no"), nil)

	got := e.ExtractText(context.Background(), []byte("%PDF"))
	require.True(t, strings.HasSuffix(got, truncationMarker))
	require.Equal(t, maxTextLen+utf8.RuneCountInString(truncationMarker), utf8.RuneCountInString(got))
}

func TestShortTextIsNotTruncated(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 400)
	e := fakeExtractor(text, nil, "", errors.New("no"), nil)

	require.Equal(t, text, e.ExtractText(context.Background(), []byte("%PDF")))
}

func TestBothTiersFailingYieldsPlaceholder(t *testing.T) {
	t.Parallel()

	e := fakeExtractor("", errors.New("broken layer"), "", errors.New("broken scan"), nil)

	require.Equal(t, failurePlaceholder, e.ExtractText(context.Background(), []byte("not a pdf")))
}

func TestWhitespaceOnlyDigitalCountsAsEmpty(t *testing.T) {
	t.Parallel()

	var called bool
	e := fakeExtractor("  \n\t  ", nil, strings.Repeat("c", 80), nil, &called)

	got := e.ExtractText(context.Background(), []byte("%PDF"))
	require.True(t, called)
	require.Equal(t, strings.Repeat("c", 80), got)
}
