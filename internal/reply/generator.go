// Package reply implements the two interchangeable reply generators behind
// a common capability interface: a deterministic, template-driven generator
// and an LLM-backed one sharing the same post-processing pipeline.
package reply

import (
	"strings"

	"github.com/chattersys/chatter/internal/detscore"
	"github.com/chattersys/chatter/internal/persona"
	"github.com/chattersys/chatter/internal/textutil"
)

// familyCount is F: the fixed number of non-default template families.
// Index space is mod(F+1) = {0,1,2,3}; index 2 is the echo family, index 3
// the catchphrase family.
const familyCount = 3

const (
	familyGreeting    = 0
	familyReaction    = 1
	familyEcho        = 2
	familyCatchphrase = 3
)

var genericTemplates = map[int][]string{
	familyGreeting: {"hey, good to see you here", "welcome to the chat"},
	familyReaction: {"haha nice", "that's wild", "no way"},
}

// e2eMarkers are substrings that force a deterministic, non-probabilistic reply.
var e2eMarkers = []string{"E2E_TEST_BOTLOOP_", "E2E_TEST_", "E2E_MARKER_"}

// ForcedMarker returns the token that starts at the first e2e marker found in
// content and runs to the next space, or "" if none matches.
func ForcedMarker(content string) string {
	for _, m := range e2eMarkers {
		if idx := strings.Index(content, m); idx >= 0 {
			end := idx + len(m)
			for end < len(content) && content[end] != ' ' {
				end++
			}
			return content[idx:end]
		}
	}
	return ""
}

// Request carries everything a generator needs to produce a reply.
type Request struct {
	EventID             string
	Content             string
	Persona             persona.Config
	Room                persona.RoomConfig
	LLMMaxOutputChars   int
	ObservationContext  string
	ObservationSummary  string
	PromptID            string
	PromptPurpose       string // "persona_reply" | "persona_auto_commentary"
}

// Generator is the common reply-generation capability; Deterministic and LLM
// are its two implementations.
type Generator interface {
	Generate(req Request) (string, error)
	Describe() Description
}

// Description is the small record a generator reports on the stats
// endpoint.
type Description struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func postProcess(text string, p persona.Config, llmMaxOutputChars int) string {
	text = textutil.StripMentions(text)
	text = textutil.CollapseWhitespace(text)
	max := llmMaxOutputChars
	if p.Safety.MaxChars > 0 && (max <= 0 || p.Safety.MaxChars < max) {
		max = p.Safety.MaxChars
	}
	text = textutil.Truncate(text, max)
	if strings.TrimSpace(text) == "" {
		return "ok"
	}
	return text
}

func familyIndex(eventID, personaID string) int {
	seed := detscore.HashSeed(eventID, personaID, "tpl")
	h := detscore.HashToUnit(seed)
	return int(h * float64(familyCount+1))
}

func emoteIndex(eventID, personaID string, n int) (bool, int) {
	if n == 0 {
		return false, 0
	}
	seed := detscore.HashSeed(eventID, personaID, "emote")
	h := detscore.HashToUnit(seed)
	flip := h < 0.5
	idxSeed := detscore.HashSeed(eventID, personaID, "emote_idx")
	idx := int(detscore.HashToUnit(idxSeed) * float64(n))
	return flip, idx
}

func renderTemplateFamily(idx int, req Request) string {
	switch idx {
	case familyCatchphrase:
		if len(req.Persona.Anchor.Catchphrases) > 0 {
			phraseSeed := detscore.HashSeed(req.EventID, req.Persona.PersonaID, "catchphrase_idx")
			i := int(detscore.HashToUnit(phraseSeed) * float64(len(req.Persona.Anchor.Catchphrases)))
			return req.Persona.Anchor.Catchphrases[i]
		}
		return "ok"
	case familyEcho:
		words := textutil.FirstAlnumWords(req.Content, 3)
		prefix := strings.Join(words, " ")
		if prefix == "" {
			return "ok"
		}
		return prefix + " — same"
	default:
		opts := genericTemplates[idx]
		if len(opts) == 0 {
			return "ok"
		}
		seed := detscore.HashSeed(req.EventID, req.Persona.PersonaID, "tpl_pick")
		i := int(detscore.HashToUnit(seed) * float64(len(opts)))
		return opts[i]
	}
}

func appendEmote(text string, req Request) string {
	emotes := req.Room.EmotePolicy.AllowedEmotes
	flip, idx := emoteIndex(req.EventID, req.Persona.PersonaID, len(emotes))
	if !flip || len(emotes) == 0 {
		return text
	}
	return text + " " + emotes[idx]
}
