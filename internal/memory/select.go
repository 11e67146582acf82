package memory

import "github.com/chattersys/chatter/internal/config"

// FromEnv picks the remote HTTP-backed store when MEMORY_REMOTE_URL is set,
// falling back to the in-process Local store otherwise.
func FromEnv() Store {
	baseURL := config.Getenv("MEMORY_REMOTE_URL", "")
	if baseURL == "" {
		return NewLocal()
	}
	return NewRemote(baseURL, nil)
}
