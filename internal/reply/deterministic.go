package reply

import "fmt"

// Deterministic is the default generator: no external calls, fully
// reproducible from its inputs.
type Deterministic struct{}

// NewDeterministic constructs the deterministic generator.
func NewDeterministic() *Deterministic { return &Deterministic{} }

// Generate implements Generator.
func (d *Deterministic) Generate(req Request) (string, error) {
	if marker := ForcedMarker(req.Content); marker != "" {
		return fmt.Sprintf("got it: %s ✅", marker), nil
	}

	idx := familyIndex(req.EventID, req.Persona.PersonaID)
	text := renderTemplateFamily(idx, req)
	text = appendEmote(text, req)
	return postProcess(text, req.Persona, req.LLMMaxOutputChars), nil
}

// Describe implements Generator.
func (d *Deterministic) Describe() Description {
	return Description{Name: "deterministic", Kind: "stub"}
}
