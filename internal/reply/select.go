package reply

import (
	"fmt"

	"github.com/chattersys/chatter/internal/config"
	"github.com/chattersys/chatter/internal/llmprovider"
)

// FromEnv builds the reply generator for a service: the always-available
// Deterministic generator when no prompt manifest is configured, or the LLM
// generator over provider when one is. An explicitly configured manifest
// that fails to load is a fatal startup error rather than a silent
// fallback.
func FromEnv(provider llmprovider.Provider) (Generator, error) {
	manifestPath := config.Getenv("REPLY_PROMPT_MANIFEST", "")
	if manifestPath == "" {
		return NewDeterministic(), nil
	}
	baseDir := config.Getenv("REPLY_PROMPT_BASE_DIR", "configs/prompts")
	templates, err := LoadManifest(manifestPath, baseDir)
	if err != nil {
		return nil, fmt.Errorf("reply: invalid prompt manifest %s: %w", manifestPath, err)
	}
	return NewLLM(provider, templates), nil
}
