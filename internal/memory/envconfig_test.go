package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/memory"
)

func TestLoadPolicyConfig_Defaults(t *testing.T) {
	t.Setenv("MEMORY_ALLOWED_SCOPES", "")
	t.Setenv("MEMORY_ALLOW_CATEGORIES", "")
	t.Setenv("MEMORY_DENY_CATEGORIES", "")
	t.Setenv("MEMORY_WRITE_ENABLED", "")
	t.Setenv("MEMORY_MIN_CONFIDENCE", "")
	t.Setenv("MEMORY_DEFAULT_TTL_DAYS", "")
	t.Setenv("MEMORY_MAX_TTL_DAYS", "")

	cfg := memory.LoadPolicyConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.AllowedScopes[memory.ScopePersona])
	assert.True(t, cfg.AllowedScopes[memory.ScopePersonaRoom])
	assert.True(t, cfg.AllowedScopes[memory.ScopePersonaUser])
	assert.Empty(t, cfg.AllowCategory)
	assert.Empty(t, cfg.DenyCategory)
	assert.Equal(t, 0.4, cfg.MinConfidence)
	assert.Equal(t, 30, cfg.DefaultTTLDays)
	assert.Equal(t, 180, cfg.MaxTTLDays)
}

func TestLoadPolicyConfig_ParsesCSVLists(t *testing.T) {
	t.Setenv("MEMORY_ALLOWED_SCOPES", "persona, persona_room")
	t.Setenv("MEMORY_ALLOW_CATEGORIES", "preference, fact")
	t.Setenv("MEMORY_DENY_CATEGORIES", "secret")
	t.Setenv("MEMORY_WRITE_ENABLED", "false")

	cfg := memory.LoadPolicyConfig()
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.AllowedScopes[memory.ScopePersona])
	assert.True(t, cfg.AllowedScopes[memory.ScopePersonaRoom])
	assert.False(t, cfg.AllowedScopes[memory.ScopePersonaUser])
	assert.True(t, cfg.AllowCategory["preference"])
	assert.True(t, cfg.AllowCategory["fact"])
	assert.True(t, cfg.DenyCategory["secret"])
}
