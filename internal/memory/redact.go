package memory

import (
	"regexp"
	"strings"
)

// RedactionPattern is one PII regex; its name is recorded as a note on match.
type RedactionPattern struct {
	Name  string
	Regex *regexp.Regexp
}

// DefaultRedactionPatterns is the fixed PII set applied to every memory
// value before a write is considered. Custom patterns may be appended by
// callers.
func DefaultRedactionPatterns() []RedactionPattern {
	return []RedactionPattern{
		{Name: "email", Regex: regexp.MustCompile(`(?i)\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)},
		{Name: "phone", Regex: regexp.MustCompile(`(?i)\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
		{Name: "address", Regex: regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z]{2,}\s+(Street|St|Road|Rd|Avenue|Ave|Boulevard|Blvd)\b`)},
	}
}

// RedactResult is the outcome of applying patterns to a value.
type RedactResult struct {
	Value   string
	Notes   []string
	Emptied bool // true if the result is empty modulo "[REDACTED]" tokens
}

// Redact applies patterns in order, replacing every match with "[REDACTED]"
// and recording one note per pattern that matched. A write whose value
// becomes empty modulo "[REDACTED]" is rejected by the caller (Emptied=true).
func Redact(value string, patterns []RedactionPattern) RedactResult {
	out := value
	var notes []string
	for _, p := range patterns {
		if p.Regex.MatchString(out) {
			out = p.Regex.ReplaceAllString(out, "[REDACTED]")
			notes = append(notes, p.Name+" redacted")
		}
	}
	return RedactResult{Value: out, Notes: notes, Emptied: isEmptyModuloRedacted(out)}
}

func isEmptyModuloRedacted(s string) bool {
	stripped := strings.ReplaceAll(s, "[REDACTED]", "")
	return strings.TrimSpace(stripped) == ""
}
