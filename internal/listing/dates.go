package listing

import (
	"regexp"
	"strings"
)

// Date heuristics. Matched values are kept as the source's own presentation
// text; nothing here parses them into calendar values.
var (
	// 11/02/2026, 11.02.2026, 11-02-2026
	numericDatePattern = regexp.MustCompile(`\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}`)

	// 10 lut 2026, 3 października 2026
	monthDatePattern = regexp.MustCompile(`(?i)\d{1,2}\s+(sty|lut|mar|kwi|maj|cze|lip|sie|wrz|paź|paz|lis|gru)[a-ząćęłńóśźż]*\s+\d{4}`)

	// 10 lut 2026, 12:34 — used by the recently-added block scan
	blockDatePattern = regexp.MustCompile(`(?i)\d{1,2}\s+(sty|lut|mar|kwi|maj|cze|lip|sie|wrz|paź|paz|lis|gru)[a-ząćęłńóśźż]*\s+\d{4}\s*,?\s*\d{1,2}:\d{2}`)
)

// maxDateCellLen guards against treating whole paragraphs as date cells.
const maxDateCellLen = 60

// DateFromCell reports whether a table cell looks like it holds a date and
// returns the cell's full trimmed text (e.g. "śr., 11/02/2026 - 14:42").
func DateFromCell(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > maxDateCellLen {
		return "", false
	}
	if numericDatePattern.MatchString(text) || monthDatePattern.MatchString(text) {
		return text, true
	}
	return "", false
}

// DateFromBlock searches free-form block text for a "D month YYYY, HH:MM"
// shaped date and returns the matched substring.
func DateFromBlock(text string) (string, bool) {
	m := blockDatePattern.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.TrimSpace(m), true
}
