package aggregate

import (
	"strings"
	"unicode"
)

// synonyms folds common editing-jargon variants onto one token so that
// near-duplicate recommendations dedupe together.
var synonyms = map[string]string{
	"bgm":        "music",
	"soundtrack": "music",
	"audio":      "music",
	"sfx":        "sound effects",
	"telop":      "caption",
	"telops":     "caption",
	"subtitle":   "caption",
	"subtitles":  "caption",
	"captions":   "caption",
	"text":       "caption",
	"cuts":       "cut",
	"cutting":    "cut",
	"transition": "cut",
	"intro":      "opening",
	"outro":      "ending",
}

// Normalize reduces a recommendation phrase to its dedup key: lowercase,
// punctuation stripped, whitespace collapsed, synonyms folded.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		if folded, ok := synonyms[w]; ok {
			words[i] = folded
		}
	}
	return strings.Join(words, " ")
}
