// Package prompt assembles the summary request sent to the completion model.
package prompt

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxDiffChars bounds the diff embedded in the prompt.
const DefaultMaxDiffChars = 18000

// Build fills the summary template with specText and diffText, the latter cut
// to at most maxDiffChars characters. Substitution is single pass, so
// template tokens inside either text are left untouched.
func Build(specText, diffText string, maxDiffChars int) string {
	r := strings.NewReplacer("{{.Spec}}", specText, "{{.Diff}}", Truncate(diffText, maxDiffChars))
	return r.Replace(summaryPromptTemplate)
}

// Truncate keeps the first limit characters (code points) of text.
// limit <= 0 disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
