package llmprovider

import "github.com/chattersys/chatter/internal/config"

// FromEnv picks the remote OpenAI provider when LLM_API_KEY is set, falling
// back to the always-available Deterministic stub otherwise: a deterministic
// stub is the default, a remote LLM provider is optional.
func FromEnv() Provider {
	apiKey := config.Getenv("LLM_API_KEY", "")
	if apiKey == "" {
		return NewDeterministic()
	}
	return NewOpenAI(OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: config.Getenv("LLM_BASE_URL", ""),
		Model:   config.Getenv("LLM_MODEL", "gpt-4o-mini"),
	}, nil)
}
