package capture

import "strings"

// Normalize collapses whitespace runs (including Unicode spaces) to single
// spaces and trims the ends. Empty results become DefaultBody.
func Normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return DefaultBody
	}
	return s
}

// Ellipsis is appended to titles cut short.
const Ellipsis = "…"

// Title returns the first maxWords words of text joined by single spaces.
// An ellipsis is appended when text had more words than that.
func Title(text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultTitleWords
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + Ellipsis
}
