package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadConfigDir reads every *.json file in dir as a persona Config, keyed by
// its persona_id. A missing directory yields an empty map rather than an
// error, so a deployment can run with zero configured personas.
func LoadConfigDir(dir string) (map[string]Config, error) {
	out := make(map[string]Config)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("persona: read config dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("persona: read %s: %w", e.Name(), err)
		}
		var cfg Config
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("persona: parse %s: %w", e.Name(), err)
		}
		if cfg.PersonaID == "" {
			return nil, fmt.Errorf("persona: %s missing persona_id", e.Name())
		}
		out[cfg.PersonaID] = cfg
	}
	return out, nil
}

// LoadRoomConfigDir reads every *.json file in dir as a RoomConfig, keyed by
// its room_id.
func LoadRoomConfigDir(dir string) (map[string]RoomConfig, error) {
	out := make(map[string]RoomConfig)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("persona: read room config dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("persona: read %s: %w", e.Name(), err)
		}
		var cfg RoomConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("persona: parse %s: %w", e.Name(), err)
		}
		if cfg.RoomID == "" {
			return nil, fmt.Errorf("persona: %s missing room_id", e.Name())
		}
		out[cfg.RoomID] = cfg
	}
	return out, nil
}
