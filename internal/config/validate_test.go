package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chattersys/chatter/internal/config"
)

func TestValidateModerationPatterns_LoadsValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"kind":"pii","pattern":"\\d+","replacement":"[n]"}]`), 0o644))

	patterns, err := config.ValidateModerationPatterns(path)
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
}

func TestValidateModerationPatterns_FailsFastOnMissingFile(t *testing.T) {
	_, err := config.ValidateModerationPatterns("/nonexistent/patterns.json")
	assert.Error(t, err)
}

func TestValidateModerationPatterns_FailsFastOnBadRegex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"kind":"pii","pattern":"(unclosed","replacement":"x"}]`), 0o644))

	_, err := config.ValidateModerationPatterns(path)
	assert.Error(t, err)
}

func TestValidateMessageSchema_LoadsValidSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"object"}`), 0o644))

	v, err := config.ValidateMessageSchema(path)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestValidateMessageSchema_FailsFastOnMissingFile(t *testing.T) {
	_, err := config.ValidateMessageSchema("/nonexistent/schema.json")
	assert.Error(t, err)
}
