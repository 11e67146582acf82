// Package llmprovider implements the pluggable request/response sink used
// as an external collaborator: a deterministic stub (default, always
// available) and a remote HTTP variant backed by the OpenAI API. Trimmed
// to a single non-streaming, non-tool-call completion operation.
package llmprovider

import "context"

// Request is a (system, user) prompt pair plus the purpose it serves.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Purpose      string // "persona_reply" | "persona_auto_commentary" | "stream_observation"
	Model        string
}

// Response is the provider's raw text output plus measured metadata used to
// populate trace fields on the caller's artifact.
type Response struct {
	Text      string
	Provider  string
	Model     string
	LatencyMS int64
}

// Provider is the capability every generator and the stream perceiver submit
// requests to.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Describe() Description
}

// Description is the small record surfaced on the /stats endpoint, per the
// teacher's duck-typed describe() idiom promoted to an interface method.
type Description struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}
