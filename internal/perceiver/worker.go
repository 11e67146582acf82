package perceiver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chattersys/chatter/internal/bus"
	"github.com/chattersys/chatter/internal/llmprovider"
	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/observability"
	"github.com/chattersys/chatter/internal/protocol"
	"github.com/chattersys/chatter/internal/reply"
)

// Counters tracks the perceiver's per-frame processing outcomes.
type Counters struct {
	FramesConsumed      metrics.Counter `json:"frames_consumed"`
	TranscriptsConsumed metrics.Counter `json:"transcripts_consumed"`
	SchemaFailures      metrics.Counter `json:"schema_failures"`
	FileMissing         metrics.Counter `json:"file_missing"`
	ShaMismatch         metrics.Counter `json:"sha_mismatch"`
	CrossCheckFailures  metrics.Counter `json:"cross_check_failures"`
	ObservationsEmitted metrics.Counter `json:"observations_emitted"`
}

// Config controls on-disk frame resolution and the transcript join window.
type Config struct {
	RepoRoot               string
	AppAlias               string // defaults to "/app/"
	TranscriptJoinWindowMS int64
	ObservationsStream     string
}

// Worker joins frames with windowed transcripts, calls an LLM provider, and
// emits cross-checked, schema-validated StreamObservation records.
type Worker struct {
	Cfg       Config
	Joins     *Joins
	Validator *protocol.Validator // validates the emitted StreamObservation
	Provider  llmprovider.Provider
	Template  *reply.LoadedTemplate // optional: "stream_observation" purpose prompt
	Counters  *Counters
	InstanceID string
}

// HandleTranscript is a bus.Handler bound to the perceiver's transcripts
// consumer: it only updates the room join buffer and watermark.
func (w *Worker) HandleTranscript() bus.Handler {
	return func(ctx context.Context, _ *bus.Bus, id string, data []byte) error {
		w.Counters.TranscriptsConsumed.Add(1)
		var seg protocol.StreamTranscriptSegment
		if err := json.Unmarshal(data, &seg); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("id", id).Msg("perceiver_transcript_decode_failed")
			return nil
		}
		w.Joins.Get(seg.RoomID).AddTranscript(seg)
		return nil
	}
}

// HandleFrame is a bus.Handler bound to the perceiver's frames consumer: it
// resolves and hashes the frame file, joins it against the windowed
// transcript buffer, calls the LLM provider, cross-checks and validates the
// result, and emits the finished observation. Ack always occurs in
// RunLoop's finally-equivalent path regardless of outcome (the handler
// itself never returns an error that would block the ack).
func (w *Worker) HandleFrame() bus.Handler {
	return func(ctx context.Context, b *bus.Bus, id string, data []byte) error {
		w.Counters.FramesConsumed.Add(1)

		var frame protocol.StreamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("id", id).Msg("perceiver_frame_decode_failed")
			w.Counters.SchemaFailures.Add(1)
			return nil
		}
		if frame.ID == "" || frame.RoomID == "" || frame.FramePath == "" || frame.SHA256 == "" {
			w.Counters.SchemaFailures.Add(1)
			return nil
		}

		join := w.Joins.Get(frame.RoomID)
		join.ObserveFrameTimestamp(frame.TS.UnixMilli())

		resolved := w.resolvePath(frame.FramePath)
		content, err := os.ReadFile(resolved)
		if err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("frame_id", frame.ID).Str("path", resolved).Msg("perceiver_file_missing")
			w.Counters.FileMissing.Add(1)
			return nil
		}
		sum := sha256.Sum256(content)
		if hex.EncodeToString(sum[:]) != frame.SHA256 {
			w.Counters.ShaMismatch.Add(1)
			return nil
		}

		transcripts := join.Join(frame.TS.UnixMilli(), w.Cfg.TranscriptJoinWindowMS)

		obs, err := w.observe(ctx, frame, transcripts)
		if err != nil {
			// observe already records the specific counter (schema_failures
			// or cross_check_failures) for the branch that rejected it.
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("frame_id", frame.ID).Msg("perceiver_observe_failed")
			return nil
		}

		payload, err := json.Marshal(obs)
		if err != nil {
			observability.LoggerWithTrace(ctx).Error().Err(err).Str("frame_id", frame.ID).Msg("perceiver_marshal_failed")
			return nil
		}
		if _, err := b.Append(ctx, w.Cfg.ObservationsStream, map[string]any{"data": string(payload)}); err != nil {
			observability.LoggerWithTrace(ctx).Error().Err(err).Str("frame_id", frame.ID).Msg("perceiver_append_failed")
			return nil
		}
		w.Counters.ObservationsEmitted.Add(1)
		return nil
	}
}

// resolvePath joins a relative frame.FramePath against the repo root,
// aliasing a "/app/" prefix to that root; other absolute paths are used as
// given.
func (w *Worker) resolvePath(framePath string) string {
	alias := w.Cfg.AppAlias
	if alias == "" {
		alias = "/app/"
	}
	if strings.HasPrefix(framePath, alias) {
		rest := strings.TrimPrefix(framePath, alias)
		return strings.TrimSuffix(w.Cfg.RepoRoot, "/") + "/" + rest
	}
	if filepath.IsAbs(framePath) {
		return framePath
	}
	return filepath.Join(w.Cfg.RepoRoot, framePath)
}

type observationRequestPayload struct {
	PromptID     string                            `json:"prompt_id"`
	PromptSHA256 string                             `json:"prompt_sha256"`
	TraceTemplate string                            `json:"trace_template"`
	Frame        protocol.StreamFrame               `json:"frame"`
	Transcripts  []protocol.StreamTranscriptSegment `json:"transcripts"`
}

// observe builds and submits the LLM request for one frame, cross-checks
// the response against the source frame/transcripts, validates it against
// the StreamObservation schema, and returns the finished observation.
func (w *Worker) observe(ctx context.Context, frame protocol.StreamFrame, transcripts []protocol.StreamTranscriptSegment) (protocol.StreamObservation, error) {
	promptID := "stream_observation"
	manifestDigest := ""
	systemPrompt := ""
	if w.Template != nil {
		promptID = w.Template.ID
		manifestDigest = w.Template.SystemSHA256 + ":" + w.Template.UserSHA256
		systemPrompt = w.Template.SystemText
	}

	req := observationRequestPayload{
		PromptID:      promptID,
		PromptSHA256:  manifestDigest,
		TraceTemplate: "stream_observation",
		Frame:         frame,
		Transcripts:   transcripts,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return protocol.StreamObservation{}, fmt.Errorf("perceiver: marshal request payload: %w", err)
	}
	userPrompt := "STREAM OBSERVATION REQUEST\nPAYLOAD_JSON:\n" + string(body)

	start := time.Now()
	resp, err := w.Provider.Complete(ctx, llmprovider.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Purpose:      "stream_observation",
	})
	latency := time.Since(start)
	if err != nil {
		return protocol.StreamObservation{}, fmt.Errorf("perceiver: provider call: %w", err)
	}

	var obs protocol.StreamObservation
	if err := json.Unmarshal([]byte(resp.Text), &obs); err != nil {
		return protocol.StreamObservation{}, fmt.Errorf("perceiver: parse observation: %w", err)
	}

	if err := crossCheck(obs, frame, transcripts); err != nil {
		w.Counters.CrossCheckFailures.Add(1)
		return protocol.StreamObservation{}, err
	}

	desc := w.Provider.Describe()
	if desc.Kind != "stub" {
		obs.Trace = protocol.ObservationTrace{
			Provider:     resp.Provider,
			Model:        resp.Model,
			LatencyMS:    latency.Milliseconds(),
			PromptID:     promptID,
			PromptSHA256: manifestDigest,
		}
	}

	if w.Validator != nil {
		if err := w.Validator.Validate(obs); err != nil {
			w.Counters.SchemaFailures.Add(1)
			return protocol.StreamObservation{}, fmt.Errorf("perceiver: %w", err)
		}
	}
	return obs, nil
}

// crossCheck rejects an observation whose room/frame/transcript
// cross-references don't match the source frame and joined transcripts.
func crossCheck(obs protocol.StreamObservation, frame protocol.StreamFrame, transcripts []protocol.StreamTranscriptSegment) error {
	if obs.RoomID != frame.RoomID {
		return fmt.Errorf("perceiver: room_id mismatch: obs=%s frame=%s", obs.RoomID, frame.RoomID)
	}
	if obs.FrameID != frame.ID {
		return fmt.Errorf("perceiver: frame_id mismatch: obs=%s frame=%s", obs.FrameID, frame.ID)
	}
	if obs.FrameSHA256 != frame.SHA256 {
		return fmt.Errorf("perceiver: frame_sha256 mismatch: obs=%s frame=%s", obs.FrameSHA256, frame.SHA256)
	}
	if len(obs.TranscriptIDs) != len(transcripts) {
		return fmt.Errorf("perceiver: transcript_ids length mismatch: obs=%d joined=%d", len(obs.TranscriptIDs), len(transcripts))
	}
	for i, seg := range transcripts {
		if obs.TranscriptIDs[i] != seg.ID {
			return fmt.Errorf("perceiver: transcript_ids order mismatch at %d: obs=%s joined=%s", i, obs.TranscriptIDs[i], seg.ID)
		}
	}
	return nil
}
