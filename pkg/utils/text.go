package utils

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

var stripPolicy = bluemonday.StrictPolicy()

// ReadingTimeMinutes estimates minutes to read content, never less than one.
func ReadingTimeMinutes(content string) int {
	words := len(strings.Fields(stripPolicy.Sanitize(content)))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt returns plain text cut to at most limit runes on a word boundary.
func Excerpt(content string, limit int) string {
	text := strings.Join(strings.Fields(stripPolicy.Sanitize(content)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
