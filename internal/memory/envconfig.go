package memory

import (
	"strings"

	"github.com/chattersys/chatter/internal/config"
)

// LoadPolicyConfig reads the memory write-gate policy from the environment.
// MEMORY_ALLOWED_SCOPES/ALLOW_CATEGORIES/DENY_CATEGORIES are comma-separated
// lists; empty ALLOW_CATEGORIES means "no allow-list restriction" (only
// DenyCategory applies).
func LoadPolicyConfig() PolicyConfig {
	scopes := map[Scope]bool{}
	for _, s := range splitCSV(config.Getenv("MEMORY_ALLOWED_SCOPES", "persona,persona_room,persona_user")) {
		scopes[Scope(s)] = true
	}
	allow := map[string]bool{}
	for _, c := range splitCSV(config.Getenv("MEMORY_ALLOW_CATEGORIES", "")) {
		allow[c] = true
	}
	deny := map[string]bool{}
	for _, c := range splitCSV(config.Getenv("MEMORY_DENY_CATEGORIES", "")) {
		deny[c] = true
	}

	return PolicyConfig{
		Enabled:        config.GetenvBool("MEMORY_WRITE_ENABLED", true),
		AllowedScopes:  scopes,
		AllowCategory:  allow,
		DenyCategory:   deny,
		MinConfidence:  config.GetenvFloat("MEMORY_MIN_CONFIDENCE", 0.4),
		DefaultTTLDays: config.GetenvInt("MEMORY_DEFAULT_TTL_DAYS", 30),
		MaxTTLDays:     config.GetenvInt("MEMORY_MAX_TTL_DAYS", 180),
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
