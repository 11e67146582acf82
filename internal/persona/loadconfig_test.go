package persona_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chattersys/chatter/internal/persona"
)

func TestLoadConfigDir_MissingDirYieldsEmptyMap(t *testing.T) {
	out, err := persona.LoadConfigDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLoadConfigDir_KeyedByPersonaID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sparkle.json"), []byte(`{"persona_id":"sparkle","display_name":"Sparkle"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not json"), 0o644))

	out, err := persona.LoadConfigDir(dir)
	require.NoError(t, err)
	require.Contains(t, out, "sparkle")
	assert.Equal(t, "Sparkle", out["sparkle"].DisplayName)
}

func TestLoadConfigDir_MissingPersonaIDErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"display_name":"No ID"}`), 0o644))

	_, err := persona.LoadConfigDir(dir)
	assert.Error(t, err)
}

func TestLoadRoomConfigDir_KeyedByRoomID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lobby.json"), []byte(`{"room_id":"lobby","enabled_personas":["sparkle"]}`), 0o644))

	out, err := persona.LoadRoomConfigDir(dir)
	require.NoError(t, err)
	require.Contains(t, out, "lobby")
	assert.Equal(t, []string{"sparkle"}, out["lobby"].EnabledPersonas)
}

func TestLoadRoomConfigDir_MissingDirYieldsEmptyMap(t *testing.T) {
	out, err := persona.LoadRoomConfigDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, out)
}
