package reply_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/persona"
	"github.com/chattersys/chatter/internal/reply"
)

func TestForcedMarker_DetectsAndExtractsSubstring(t *testing.T) {
	assert.Equal(t, "E2E_TEST_foo", reply.ForcedMarker("hello E2E_TEST_foo world"))
	assert.Equal(t, "", reply.ForcedMarker("nothing special here"))
}

func TestDeterministic_ForcedMarkerReply(t *testing.T) {
	g := reply.NewDeterministic()
	out, err := g.Generate(reply.Request{
		EventID: "ev1",
		Content: "please E2E_TEST_123 now",
		Persona: persona.Config{PersonaID: "p1", Safety: persona.Safety{MaxChars: 200}},
	})
	assert.NoError(t, err)
	assert.Equal(t, "got it: E2E_TEST_123 ✅", out)
}

func TestDeterministic_IsDeterministicAcrossCalls(t *testing.T) {
	g := reply.NewDeterministic()
	req := reply.Request{
		EventID: "ev2",
		Content: "hey there everyone",
		Persona: persona.Config{
			PersonaID: "clipgoblin",
			Safety:    persona.Safety{MaxChars: 200},
			Anchor:    persona.Anchor{Catchphrases: []string{"lfg", "lets go"}},
		},
	}
	out1, _ := g.Generate(req)
	out2, _ := g.Generate(req)
	assert.Equal(t, out1, out2)
	assert.NotEmpty(t, out1)
}

func TestDeterministic_TruncatesToMaxChars(t *testing.T) {
	g := reply.NewDeterministic()
	req := reply.Request{
		EventID: "ev3",
		Content: "@someone hello there friend how are you doing today",
		Persona: persona.Config{
			PersonaID: "echoer",
			Safety:    persona.Safety{MaxChars: 5},
		},
	}
	out, err := g.Generate(req)
	assert.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(out)), 5)
}

func TestDeterministic_StripsMentions(t *testing.T) {
	g := reply.NewDeterministic()
	req := reply.Request{
		EventID: "ev4",
		Content: "@bob @alice yo yo yo",
		Persona: persona.Config{
			PersonaID: "echoer2",
			Safety:    persona.Safety{MaxChars: 200},
		},
	}
	out, _ := g.Generate(req)
	assert.False(t, strings.Contains(out, "@bob"))
}

func TestCanonicalPromptHash_NormalizesNewlines(t *testing.T) {
	a := reply.CanonicalPromptHash("hello\r\nworld")
	b := reply.CanonicalPromptHash("hello\nworld\n")
	assert.Equal(t, a, b)
}

func TestCanonicalizeNewlines_ExactlyOneTrailingLF(t *testing.T) {
	got := reply.CanonicalizeNewlines("abc\n\n\n")
	assert.Equal(t, "abc\n", got)
}
