package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/textutil"
)

func TestMentionDetected(t *testing.T) {
	assert.True(t, textutil.MentionDetected("Sparkle", "hey Sparkle what's up"))
	assert.True(t, textutil.MentionDetected("Sparkle", "yo @sparkle"))
	assert.False(t, textutil.MentionDetected("Sparkle", "hello world"))
	assert.False(t, textutil.MentionDetected("", "hello sparkle"))
}

func TestHypeDetected(t *testing.T) {
	assert.True(t, textutil.HypeDetected("POGGERS that was insane"))
	assert.True(t, textutil.HypeDetected("lol W move"))
	assert.True(t, textutil.HypeDetected("WOW that is wild"))
	assert.True(t, textutil.HypeDetected("powwwww"))
	assert.False(t, textutil.HypeDetected("just chatting here"))
}

func TestFirstAlnumWords(t *testing.T) {
	assert.Equal(t, []string{"hello", "there", "friend"}, textutil.FirstAlnumWords("hello, there! friend of mine", 3))
	assert.Equal(t, []string{"hi"}, textutil.FirstAlnumWords("hi", 3))
}

func TestStripMentions(t *testing.T) {
	assert.Equal(t, "hello friend", textutil.StripMentions("hello @sparkle friend"))
	assert.Equal(t, "", textutil.StripMentions("@only @mentions"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", textutil.CollapseWhitespace("  a   b\tc\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", textutil.Truncate("abcdef", 3))
	assert.Equal(t, "ab", textutil.Truncate("ab", 5))
}

func TestNormalizeSummary(t *testing.T) {
	assert.Equal(t, "a clip happened", textutil.NormalizeSummary("  A   Clip  Happened "))
}

func TestContainsWholeWordOrAt(t *testing.T) {
	assert.True(t, textutil.ContainsWholeWordOrAt("a big clip happened", "clip"))
	assert.True(t, textutil.ContainsWholeWordOrAt("shoutout @sparkle", "sparkle"))
	assert.False(t, textutil.ContainsWholeWordOrAt("clipboard is full", "clip"))
	assert.False(t, textutil.ContainsWholeWordOrAt("anything", ""))
}
