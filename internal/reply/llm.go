package reply

import (
	"context"
	"strings"

	"github.com/chattersys/chatter/internal/llmprovider"
)

// LLM is the remote/provider-backed generator. It renders the manifest
// template for the request's purpose, substitutes the event context, submits
// to the provider, and post-processes identically to Deterministic.
type LLM struct {
	Provider  llmprovider.Provider
	Templates map[string]LoadedTemplate
}

// NewLLM constructs an LLM generator over provider and a loaded manifest.
func NewLLM(provider llmprovider.Provider, templates map[string]LoadedTemplate) *LLM {
	return &LLM{Provider: provider, Templates: templates}
}

// Generate implements Generator.
func (g *LLM) Generate(req Request) (string, error) {
	if marker := ForcedMarker(req.Content); marker != "" {
		return "got it: " + marker + " ✅", nil
	}

	tpl, ok := g.Templates[req.PromptPurpose]
	if !ok {
		// No template for this purpose falls back to the deterministic path
		// rather than failing the whole decision (spec's generators are
		// interchangeable, not a hard dependency on a live provider).
		return (&Deterministic{}).Generate(req)
	}

	userPrompt := renderUserPrompt(tpl.UserText, req)
	resp, err := g.Provider.Complete(context.Background(), llmprovider.Request{
		SystemPrompt: tpl.SystemText,
		UserPrompt:   userPrompt,
		Purpose:      req.PromptPurpose,
	})
	if err != nil {
		return "", err
	}

	return postProcess(resp.Text, req.Persona, req.LLMMaxOutputChars), nil
}

// Describe implements Generator.
func (g *LLM) Describe() Description {
	return Description{Name: g.Provider.Describe().Name, Kind: "llm"}
}

func renderUserPrompt(template string, req Request) string {
	r := strings.NewReplacer(
		"{{content}}", req.Content,
		"{{persona_display_name}}", req.Persona.DisplayName,
		"{{observation_context}}", req.ObservationContext,
		"{{observation_summary}}", req.ObservationSummary,
	)
	return r.Replace(template)
}
