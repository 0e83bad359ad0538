package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripHTML removes markup from a feed excerpt and collapses whitespace.
// Input that fails to parse is returned trimmed rather than dropped.
func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// truncateWords caps s at max runes, cutting back to the last word boundary
// so no word is split mid-way.
func truncateWords(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := string(runes[:max])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ")
}

// truncateRunes caps s at max runes with no boundary handling, for short
// labels like source names.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
