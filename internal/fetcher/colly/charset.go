package collyfetcher

import (
	"bytes"
	"mime"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeText converts a text body to UTF-8. The declared charset wins; when
// the response does not declare one, the body is sniffed the way Python's
// requests resolves apparent_encoding. Binary bodies and anything already
// UTF-8 pass through untouched. Decoding is best-effort: on any failure the
// original bytes are returned.
func decodeText(body []byte, contentType string) []byte {
	if len(body) == 0 || !IsTextContentType(contentType) {
		return body
	}

	name := declaredCharset(contentType)
	if name == "" {
		name = detectCharset(body)
	}
	if name == "" || isUTF8Name(name) {
		return body
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func detectCharset(body []byte) string {
	sample := body
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	// Cheap opt-out for documents that announce their own encoding.
	if bytes.Contains(bytes.ToLower(sample), []byte("charset=utf-8")) {
		return "utf-8"
	}
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return ""
	}
	return result.Charset
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}
