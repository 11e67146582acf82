// Package textutil holds the small normalized-text helpers shared by the
// persona decision engines: mention/hype detection, word splitting, and
// the "first three alphanumeric words" echo used by the deterministic
// reply generator. Grounded on the original source's text_utils.py.
package textutil

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// hypeTerms is the fixed set matched against the upper-cased content.
var hypeTerms = []string{"POG", "POGGERS", "OMEGALUL", "LUL", "KEKW", "W", "HYPE"}

// MentionDetected matches display name case-insensitively against content,
// both bare and "@"-prefixed.
func MentionDetected(displayName, content string) bool {
	if displayName == "" {
		return false
	}
	lowerContent := strings.ToLower(content)
	lowerName := strings.ToLower(displayName)
	return strings.Contains(lowerContent, lowerName) || strings.Contains(lowerContent, "@"+lowerName)
}

// HypeDetected reports whether any fixed hype token appears anywhere in the
// upper-cased content, including embedded in a longer word (e.g. "WOW",
// "POWWW").
func HypeDetected(content string) bool {
	upper := strings.ToUpper(content)
	for _, term := range hypeTerms {
		if strings.Contains(upper, term) {
			return true
		}
	}
	return false
}

// FirstAlnumWords returns up to n alphanumeric words from s, in order.
func FirstAlnumWords(s string, n int) []string {
	words := wordRe.FindAllString(s, -1)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// StripMentions removes "@token" substrings and collapses whitespace.
func StripMentions(s string) string {
	var b strings.Builder
	fields := strings.Fields(s)
	for _, f := range fields {
		if strings.HasPrefix(f, "@") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f)
	}
	return b.String()
}

// CollapseWhitespace reduces runs of whitespace to single spaces and trims ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes, leaving it untouched if shorter.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// NormalizeSummary lower-cases and collapses whitespace, used for summary
// dedupe hashing and persona-mention matching within observation summaries.
func NormalizeSummary(s string) string {
	return strings.ToLower(CollapseWhitespace(s))
}

// ContainsWholeWordOrAt reports whether needle appears in haystack either as
// a standalone word or "@needle" (haystack and needle are assumed already
// lower-cased).
func ContainsWholeWordOrAt(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	words := wordRe.FindAllString(haystack, -1)
	for _, w := range words {
		if w == needle {
			return true
		}
	}
	return strings.Contains(haystack, "@"+needle)
}
