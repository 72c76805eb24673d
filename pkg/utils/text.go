package utils

import "strings"

// Truncate keeps the first limit runes of text and appends "..." when
// anything was cut. Surrounding whitespace is dropped first.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
