package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"github.com/bipwatch/crawler/internal/bip"
)

// ocrLanguages covers Polish documents with the occasional English insert.
var ocrLanguages = []string{"pol", "eng"}

// ocrText rasterizes every page and runs it through tesseract.
func ocrText(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("%w: rasterize: %v", bip.ErrDocumentDecode, err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(ocrLanguages...); err != nil {
		return "", fmt.Errorf("%w: languages: %v", bip.ErrRecognition, err)
	}

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := doc.Image(i)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", bip.ErrDocumentDecode, i+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode page %d: %w", i+1, err)
		}
		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return "", fmt.Errorf("%w: page %d: %v", bip.ErrRecognition, i+1, err)
		}
		pageText, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", bip.ErrRecognition, i+1, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
