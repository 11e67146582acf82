package moderation_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/moderation"
	"github.com/chattersys/chatter/internal/protocol"
)

func TestSanitize_CollapsesNewlinesAndTrims(t *testing.T) {
	got := moderation.Sanitize("Call me at 555-123-4567\nthx  ", 200)
	assert.Equal(t, "Call me at 555-123-4567 thx", got)
}

func TestSanitize_EmptyAfterTrim(t *testing.T) {
	assert.Equal(t, "", moderation.Sanitize("   \n\r\n  ", 200))
}

func TestSanitize_Truncates(t *testing.T) {
	assert.Equal(t, "abc", moderation.Sanitize("abcdef", 3))
}

// TestApply_S1 mirrors  Testable Property S1: gateway sanitize + moderate.
func TestApply_S1(t *testing.T) {
	patterns := []moderation.Pattern{
		{Kind: "phone", Regex: regexp.MustCompile(`\d{3}-\d{3}-\d{4}`), Replacement: "[redacted]"},
	}
	sanitized := moderation.Sanitize("Call me at 555-123-4567\nthx", 200)
	result := moderation.Apply(sanitized, patterns)

	assert.Equal(t, "Call me at [redacted] thx", result.Content)
	assert.Equal(t, protocol.ModerationRedact, result.Action)
	assert.Equal(t, []string{"phone"}, result.Reasons)
}

func TestApply_AllowWhenNoPatternMatches(t *testing.T) {
	result := moderation.Apply("hello world", moderation.DefaultPatterns())
	assert.Equal(t, protocol.ModerationAllow, result.Action)
	assert.Empty(t, result.Reasons)
}

func TestApply_DistinctOrderedReasons(t *testing.T) {
	patterns := []moderation.Pattern{
		{Kind: "a", Regex: regexp.MustCompile(`x`), Replacement: "_"},
		{Kind: "b", Regex: regexp.MustCompile(`y`), Replacement: "_"},
		{Kind: "a", Regex: regexp.MustCompile(`z`), Replacement: "_"},
	}
	result := moderation.Apply("x y z", patterns)
	assert.Equal(t, []string{"a", "b"}, result.Reasons)
}
