package reply

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CanonicalizeNewlines normalizes CR/LF to LF and enforces exactly one
// trailing LF before a prompt's canonical hash is computed.
func CanonicalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRight(s, "\n")
	return s + "\n"
}

// CanonicalPromptHash returns the SHA-256 hex digest of the canonicalized
// prompt text.
func CanonicalPromptHash(text string) string {
	sum := sha256.Sum256([]byte(CanonicalizeNewlines(text)))
	return hex.EncodeToString(sum[:])
}

// PromptTemplate is one named (system, user) pair in the manifest.
type PromptTemplate struct {
	ID           string `json:"id"`
	Purpose      string `json:"purpose"`
	SystemFile   string `json:"system_file"`
	UserFile     string `json:"user_file"`
	SystemSHA256 string `json:"system_sha256"`
	UserSHA256   string `json:"user_sha256"`
}

// Manifest is the on-disk prompt manifest validated at startup.
type Manifest struct {
	Templates []PromptTemplate `json:"templates"`
}

// LoadedTemplate holds a manifest entry's rendered prompt text, verified
// against its declared hash at load time.
type LoadedTemplate struct {
	PromptTemplate
	SystemText string
	UserText   string
}

// LoadManifest reads manifestPath, resolves each template's prompt files
// relative to baseDir, and verifies the canonical SHA-256 of each file
// against the manifest. A mismatch is a fatal init error.
func LoadManifest(manifestPath, baseDir string) (map[string]LoadedTemplate, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reply: read prompt manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("reply: decode prompt manifest: %w", err)
	}

	out := make(map[string]LoadedTemplate, len(m.Templates))
	for _, t := range m.Templates {
		sysText, err := os.ReadFile(joinBase(baseDir, t.SystemFile))
		if err != nil {
			return nil, fmt.Errorf("reply: read system prompt %s: %w", t.ID, err)
		}
		usrText, err := os.ReadFile(joinBase(baseDir, t.UserFile))
		if err != nil {
			return nil, fmt.Errorf("reply: read user prompt %s: %w", t.ID, err)
		}
		if got := CanonicalPromptHash(string(sysText)); got != t.SystemSHA256 {
			return nil, fmt.Errorf("reply: prompt %s system hash mismatch: manifest=%s computed=%s", t.ID, t.SystemSHA256, got)
		}
		if got := CanonicalPromptHash(string(usrText)); got != t.UserSHA256 {
			return nil, fmt.Errorf("reply: prompt %s user hash mismatch: manifest=%s computed=%s", t.ID, t.UserSHA256, got)
		}
		out[t.Purpose] = LoadedTemplate{
			PromptTemplate: t,
			SystemText:     CanonicalizeNewlines(string(sysText)),
			UserText:       CanonicalizeNewlines(string(usrText)),
		}
	}
	return out, nil
}

func joinBase(baseDir, file string) string {
	if baseDir == "" {
		return file
	}
	return strings.TrimSuffix(baseDir, "/") + "/" + file
}
