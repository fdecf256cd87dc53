package risk

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// fold lowercases s with full Unicode case folding.  Rule-document patterns,
// keywords, and record text all pass through the same fold, so matching never
// depends on case distinctions that plain lowercasing misses.
func fold(s string) string {
	return cases.Fold().String(s)
}

// collapseWhitespace trims s and squeezes every whitespace run to one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Excerpt shortens free text for display: trimmed as-is when it fits, else
// truncated to maxRunes runes including a trailing ellipsis.
func Excerpt(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	head := strings.TrimRightFunc(string(runes[:maxRunes-3]), unicode.IsSpace)
	return head + "..."
}
