package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chattersys/chatter/internal/memory"
)

func TestLocal_SearchOrdersByScore(t *testing.T) {
	store := memory.NewLocal()
	now := time.Now()
	require.NoError(t, store.Upsert("persona:p1", memory.Item{ID: "a", Subject: "golang", Value: "likes go", TS: now}))
	require.NoError(t, store.Upsert("persona:p1", memory.Item{ID: "b", Subject: "rust", Value: "likes go too", TS: now.Add(time.Second)}))

	items, err := store.Search("persona:p1", "go", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID) // subject match (3) beats value-only match (2)
}

func TestLocal_SearchRespectsLimit(t *testing.T) {
	store := memory.NewLocal()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Upsert("persona:p1", memory.Item{ID: string(rune('a' + i)), Subject: "go", TS: time.Now()}))
	}
	items, err := store.Search("persona:p1", "go", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRedact_ReplacesMatchesAndRecordsNotes(t *testing.T) {
	result := memory.Redact("email me at a@b.com", memory.DefaultRedactionPatterns())
	assert.Equal(t, "email me at [REDACTED]", result.Value)
	assert.Contains(t, result.Notes, "email redacted")
	assert.False(t, result.Emptied)
}

func TestRedact_EmptiedModuloToken(t *testing.T) {
	result := memory.Redact("a@b.com", memory.DefaultRedactionPatterns())
	assert.True(t, result.Emptied)
}

func TestApply_RejectsLowConfidence(t *testing.T) {
	cfg := memory.PolicyConfig{
		Enabled:       true,
		AllowedScopes: map[memory.Scope]bool{memory.ScopePersona: true},
		MinConfidence: 0.5,
	}
	_, decision := memory.Apply(cfg, memory.Item{Scope: memory.ScopePersona, Confidence: 0.1})
	assert.False(t, decision.Accept)
	assert.Equal(t, "low_confidence", decision.Reason)
}

func TestApply_AcceptsAndAppliesDefaultTTL(t *testing.T) {
	cfg := memory.PolicyConfig{
		Enabled:        true,
		AllowedScopes:  map[memory.Scope]bool{memory.ScopePersona: true},
		MinConfidence:  0.0,
		DefaultTTLDays: 7,
		MaxTTLDays:     30,
	}
	item, decision := memory.Apply(cfg, memory.Item{Scope: memory.ScopePersona, Confidence: 0.9})
	assert.True(t, decision.Accept)
	assert.Equal(t, 7, item.TTLDays)
}

func TestApply_EnforcesTTLCeiling(t *testing.T) {
	cfg := memory.PolicyConfig{
		Enabled:       true,
		AllowedScopes: map[memory.Scope]bool{memory.ScopePersona: true},
		MaxTTLDays:    10,
	}
	item, decision := memory.Apply(cfg, memory.Item{Scope: memory.ScopePersona, Confidence: 1, TTLDays: 99})
	assert.True(t, decision.Accept)
	assert.Equal(t, 10, item.TTLDays)
}

func TestNormalizeBaseURL_AcceptsTrailingSlashOrNot(t *testing.T) {
	assert.Equal(t, "http://x/memories", memory.NormalizeBaseURL("http://x"))
	assert.Equal(t, "http://x/memories", memory.NormalizeBaseURL("http://x/"))
}

func TestRemote_RejectsWithoutIdentifier(t *testing.T) {
	r := memory.NewRemote("http://example.invalid", nil)
	_, err := r.Search("persona:", "q", 5)
	assert.ErrorIs(t, err, memory.ErrNoIdentifier)
}
