package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chattersys/chatter/internal/detscore"
)

// Deterministic is the default, always-available provider: it never makes a
// network call and derives its output purely from the request's content, so
// tests and offline deployments get reproducible fixtures instead of a
// dependency on live credentials.
type Deterministic struct{}

// NewDeterministic constructs the stub provider.
func NewDeterministic() *Deterministic { return &Deterministic{} }

// Complete returns a fixture string derived from a deterministic hash of the
// purpose and user prompt, so repeated calls with the same input are stable.
// For "stream_observation" it returns a JSON-shaped StreamObservation fixture
// that echoes the frame/transcript identifiers embedded in the request
// payload, so the perceiver's cross-check passes
// without a live provider configured. That fixture's "ts" is the current
// time, so it is the one field that differs between repeated calls.
func (d *Deterministic) Complete(_ context.Context, req Request) (Response, error) {
	seed := detscore.HashSeed(req.Purpose, req.UserPrompt)
	h := detscore.HashToUnit(seed)

	if req.Purpose == "stream_observation" {
		text := observationFixture(req.UserPrompt, h)
		return Response{Text: text, Provider: "deterministic", Model: "stub-1"}, nil
	}

	text := fmt.Sprintf("[stub:%s] response #%d", req.Purpose, int(h*1000))
	return Response{
		Text:     text,
		Provider: "deterministic",
		Model:    "stub-1",
	}, nil
}

// Describe implements Provider.
func (d *Deterministic) Describe() Description {
	return Description{Name: "deterministic", Kind: "stub"}
}

type observationFixtureFrame struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`
	SHA256 string `json:"sha256"`
}

type observationFixtureTranscript struct {
	ID string `json:"id"`
}

type observationFixtureRequest struct {
	Frame       observationFixtureFrame        `json:"frame"`
	Transcripts []observationFixtureTranscript `json:"transcripts"`
}

// observationFixture derives a self-consistent StreamObservation JSON
// document from the request's embedded payload, using h to pick a stable
// hype_level and summary.
func observationFixture(userPrompt string, h float64) string {
	const marker = "PAYLOAD_JSON:\n"
	idx := strings.Index(userPrompt, marker)
	var payload observationFixtureRequest
	if idx >= 0 {
		_ = json.Unmarshal([]byte(userPrompt[idx+len(marker):]), &payload)
	}

	transcriptIDs := make([]string, len(payload.Transcripts))
	for i, t := range payload.Transcripts {
		transcriptIDs[i] = t.ID
	}

	out := map[string]any{
		"id":             payload.Frame.ID + ":obs",
		"ts":             time.Now().UTC().Format(time.RFC3339),
		"room_id":        payload.Frame.RoomID,
		"frame_id":       payload.Frame.ID,
		"frame_sha256":   payload.Frame.SHA256,
		"transcript_ids": transcriptIDs,
		"summary":        "stream update observed",
		"tags":           []string{},
		"entities":       []string{},
		"hype_level":     h,
		"safety": map[string]bool{
			"sexual": false, "violence": false, "self_harm": false, "hate": false, "harassment": false,
		},
		"trace": map[string]any{
			"provider": "deterministic", "model": "stub-1", "latency_ms": 0,
			"prompt_id": "stream_observation", "prompt_sha256": "",
		},
	}
	raw, _ := json.Marshal(out)
	return string(raw)
}
