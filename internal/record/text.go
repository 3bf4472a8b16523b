// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeText collapses runs of whitespace into single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TrimText normalizes s and cuts it to limit runes, ending with "…" when cut.
func TrimText(s string, limit int) string {
	text := NormalizeText(s)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:limit-1]), unicode.IsSpace) + "…"
}
