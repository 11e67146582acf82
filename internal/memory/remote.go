package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNoIdentifier is returned when a scope_key lifts no identifier at all,
// before any network call is made.
var ErrNoIdentifier = errors.New("memory: remote store requires at least one of app_id, user_id, agent_id, run_id")

// Identifiers are lifted from a scope_key's colon-joined segments.
type Identifiers struct {
	AppID   string
	UserID  string
	AgentID string
	RunID   string
}

func (i Identifiers) empty() bool {
	return i.AppID == "" && i.UserID == "" && i.AgentID == "" && i.RunID == ""
}

// ParseScopeKey lifts identifiers from a scope_key whose prefix is one of
// {persona, persona_room, persona_user}, per the glossary's "scope key"
// shape: "<scope>:<persona_id>[:<room_id>|:<user_id>]".
func ParseScopeKey(scopeKey string) Identifiers {
	parts := strings.Split(scopeKey, ":")
	if len(parts) < 2 {
		return Identifiers{}
	}
	ids := Identifiers{AgentID: parts[1]}
	switch parts[0] {
	case string(ScopePersonaRoom):
		if len(parts) >= 3 {
			ids.RunID = parts[2]
		}
	case string(ScopePersonaUser):
		if len(parts) >= 3 {
			ids.UserID = parts[2]
		}
	}
	return ids
}

// NormalizeBaseURL accepts a search-endpoint base URL with or without a
// trailing slash and normalizes to "no trailing slash, joined with
// /memories".
func NormalizeBaseURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/memories"
}

// Remote is an HTTP-backed store requiring at least one identifier before
// any network call.
type Remote struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewRemote constructs a remote store over baseURL (pre-/memories).
func NewRemote(baseURL string, httpClient *http.Client) *Remote {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Remote{BaseURL: NormalizeBaseURL(baseURL), HTTPClient: httpClient}
}

// Search implements Store.
func (r *Remote) Search(scopeKey, query string, limit int) ([]Item, error) {
	ids := ParseScopeKey(scopeKey)
	if ids.empty() {
		return nil, ErrNoIdentifier
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body, _ := json.Marshal(map[string]any{
		"scope_key": scopeKey,
		"query":     query,
		"limit":     limit,
		"app_id":    ids.AppID,
		"user_id":   ids.UserID,
		"agent_id":  ids.AgentID,
		"run_id":    ids.RunID,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("memory: build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory: search request: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Items []Item `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("memory: decode search response: %w", err)
	}
	return out.Items, nil
}

// Upsert implements Store.
func (r *Remote) Upsert(scopeKey string, item Item) error {
	ids := ParseScopeKey(scopeKey)
	if ids.empty() {
		return ErrNoIdentifier
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body, _ := json.Marshal(map[string]any{
		"scope_key": scopeKey,
		"item":      item,
		"app_id":    ids.AppID,
		"user_id":   ids.UserID,
		"agent_id":  ids.AgentID,
		"run_id":    ids.RunID,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/upsert", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("memory: build upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("memory: upsert request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("memory: upsert: status %d", resp.StatusCode)
	}
	return nil
}

// Describe implements Store.
func (r *Remote) Describe() Description {
	return Description{Name: "remote", Kind: "http"}
}
