package moderation

import "strings"

// Sanitize collapses CRLF/CR/LF to a single space, trims, and truncates to
// maxChars runes. An empty result signals the caller to drop the message.
func Sanitize(content string, maxChars int) string {
	replacer := strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	s := strings.TrimSpace(replacer.Replace(content))
	if maxChars > 0 {
		r := []rune(s)
		if len(r) > maxChars {
			s = string(r[:maxChars])
		}
	}
	return s
}
