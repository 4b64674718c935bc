// Package textstats derives word and reading statistics from the editor's
// plain text. Nothing here is persisted.
package textstats

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orsinium-labs/stopwords"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

var english = stopwords.MustGet("en")

// Summary holds the derived counts for one text.
type Summary struct {
	Words          int `json:"words"`
	ContentWords   int `json:"contentWords"`
	Characters     int `json:"characters"`
	ReadingMinutes int `json:"readingMinutes"`
}

// Words counts whitespace-separated fields.
func Words(text string) int {
	return len(strings.Fields(text))
}

// Stats computes the full summary for text.
func Stats(text string) Summary {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)

	var content int
	for _, f := range fields {
		w := strings.ToLower(strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		}))
		if w == "" || english.Contains(w) {
			continue
		}
		content++
	}

	minutes := 0
	if n := len(fields); n > 0 {
		minutes = (n + WordsPerMinute - 1) / WordsPerMinute
	}
	return Summary{
		Words:          len(fields),
		ContentWords:   content,
		Characters:     utf8.RuneCountInString(trimmed),
		ReadingMinutes: minutes,
	}
}
