package persona

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chattersys/chatter/internal/bus"
	"github.com/chattersys/chatter/internal/memory"
	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/observability"
	"github.com/chattersys/chatter/internal/protocol"
	"github.com/chattersys/chatter/internal/reply"
	"github.com/chattersys/chatter/internal/state"
)

// WorkerCounters tracks the outcomes the persona worker surfaces on /stats.
type WorkerCounters struct {
	Consumed          metrics.Counter `json:"consumed"`
	Duplicate         metrics.Counter `json:"duplicate"`
	RepliesEmitted    metrics.Counter `json:"replies_emitted"`
	RepliesSuppressed metrics.Counter `json:"replies_suppressed"`
	AppendFailures    metrics.Counter `json:"append_failures"`
	MemoryAccepted    metrics.Counter `json:"memory_accepted"`
	MemoryRejected    metrics.Counter `json:"memory_writes_rejected"`

	ObservationsConsumed     metrics.Counter `json:"observations_consumed"`
	AutoCommentaryEmitted    metrics.Counter `json:"auto_commentary_emitted"`
	AutoCommentarySuppressed metrics.Counter `json:"auto_commentary_suppressed"`
}

// Worker consumes the firehose stream, deduping by message id, and runs the
// chat-reactive decision engine for every persona enabled in the message's
// room. A positive decision is rendered into a reply and appended back to
// ingest, closing the loop described in Data flow paragraph.
type Worker struct {
	Dedupe      *state.DedupeCache
	Rooms       *state.Rooms
	Personas    *state.PersonaStore
	RoomConfigs map[string]RoomConfig
	PersonaCfgs map[string]Config
	Generator   reply.Generator
	Extractor   *Extractor // nil disables memory extraction
	IngestName  string
	Counters    *WorkerCounters
	InstanceID  string

	AutoStates *AutoStateRegistry
}

// AutoStateRegistry is a process-local registry of per-room auto-commentary
// state, created lazily on first access.
type AutoStateRegistry struct {
	mu               sync.Mutex
	byRoom           map[string]*state.AutoCommentaryState
	avoidRepeatLastN int
}

// NewAutoStateRegistry constructs a registry whose lazily-created states
// keep avoidRepeatLastN recently-spoken persona ids for diversity selection.
func NewAutoStateRegistry(avoidRepeatLastN int) *AutoStateRegistry {
	return &AutoStateRegistry{byRoom: make(map[string]*state.AutoCommentaryState), avoidRepeatLastN: avoidRepeatLastN}
}

// Get returns the AutoCommentaryState for roomID, creating it if absent.
func (r *AutoStateRegistry) Get(roomID string) *state.AutoCommentaryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byRoom[roomID]
	if !ok {
		s = state.NewAutoCommentaryState(r.avoidRepeatLastN)
		r.byRoom[roomID] = s
	}
	return s
}

// Handle is a bus.Handler bound to the persona worker's firehose consumer.
func (w *Worker) Handle() bus.Handler {
	return func(ctx context.Context, b *bus.Bus, id string, data []byte) error {
		w.Counters.Consumed.Add(1)

		var msg protocol.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("id", id).Msg("persona_worker_decode_failed")
			return nil
		}
		if w.Dedupe.SeenOrAdd(msg.ID) {
			w.Counters.Duplicate.Add(1)
			return nil
		}

		room := w.Rooms.Get(msg.RoomID)
		room.PushRecent(msg)
		nowMS := state.NowMS()
		room.EventTimes.Add(nowMS)

		if w.Extractor != nil && msg.Origin == protocol.OriginHuman {
			scopeKey := string(memory.ScopePersonaUser) + ":" + msg.RoomID + ":" + msg.UserID
			counters := w.Extractor.ExtractAndStore(ctx, msg, scopeKey)
			w.Counters.MemoryAccepted.Add(counters.Accepted)
			w.Counters.MemoryRejected.Add(counters.Rejected)
		}

		roomCfg, ok := w.RoomConfigs[msg.RoomID]
		if !ok {
			return nil
		}

		for _, personaID := range roomCfg.EnabledPersonas {
			personaCfg, ok := w.PersonaCfgs[personaID]
			if !ok {
				continue
			}
			w.reactTo(ctx, b, msg, personaCfg, roomCfg, room, nowMS)
		}
		return nil
	}
}

func (w *Worker) reactTo(ctx context.Context, b *bus.Bus, msg protocol.ChatMessage, personaCfg Config, roomCfg RoomConfig, room *state.RoomState, nowMS int64) {
	persStats := w.Personas.Get(personaCfg.PersonaID)
	decision := DecideChat(msg, personaCfg, roomCfg, persStats, room, nowMS)
	if !decision.Emit {
		w.Counters.RepliesSuppressed.Add(1)
		return
	}

	text, err := w.Generator.Generate(reply.Request{
		EventID:           msg.ID,
		Content:           msg.Content,
		Persona:           personaCfg,
		Room:              roomCfg,
		LLMMaxOutputChars: personaCfg.Safety.MaxChars,
		PromptID:          "persona_reply",
		PromptPurpose:     "persona_reply",
	})
	if err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("persona_id", personaCfg.PersonaID).Str("message_id", msg.ID).Msg("persona_worker_generate_failed")
		w.Counters.RepliesSuppressed.Add(1)
		return
	}

	botMsg := protocol.ChatMessage{
		ID:          uuid.NewString(),
		TS:          time.Now().UTC(),
		RoomID:      msg.RoomID,
		Origin:      protocol.OriginBot,
		Content:     text,
		DisplayName: personaCfg.DisplayName,
		ReplyTo:     msg.ID,
		Badges:      personaCfg.Presentation.Badges,
		Style:       personaCfg.Presentation.Style,
		Trace: &protocol.Trace{
			PersonaID:      personaCfg.PersonaID,
			WorkerInstance: w.InstanceID,
			ProcessedBy:    []string{"persona_worker"},
		},
	}

	payload, err := json.Marshal(botMsg)
	if err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("persona_id", personaCfg.PersonaID).Msg("persona_worker_marshal_failed")
		w.Counters.AppendFailures.Add(1)
		return
	}

	if _, err := b.Append(ctx, w.IngestName, map[string]any{"data": string(payload)}); err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("persona_id", personaCfg.PersonaID).Msg("persona_worker_append_failed")
		w.Counters.AppendFailures.Add(1)
		return
	}

	persStats.RecordPublish(nowMS)
	room.BotPublishTimes.Add(nowMS)
	w.Counters.RepliesEmitted.Add(1)
}

// HandleObservation is a bus.Handler bound to the persona worker's
// observations consumer.
func (w *Worker) HandleObservation() bus.Handler {
	return func(ctx context.Context, b *bus.Bus, id string, data []byte) error {
		w.Counters.ObservationsConsumed.Add(1)

		var obs protocol.StreamObservation
		if err := json.Unmarshal(data, &obs); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("id", id).Msg("persona_worker_observation_decode_failed")
			return nil
		}

		roomCfg, ok := w.RoomConfigs[obs.RoomID]
		if !ok {
			return nil
		}
		room := w.Rooms.Get(obs.RoomID)
		autoState := w.AutoStates.Get(obs.RoomID)
		nowMS := state.NowMS()

		// DecideAuto's gate chain is persona-agnostic except for hype
		// threshold/trigger config, so it is evaluated once against the
		// first enabled persona's Config and, on pass, followed by
		// deterministic persona selection across all enabled personas.
		for _, personaID := range roomCfg.EnabledPersonas {
			personaCfg, ok := w.PersonaCfgs[personaID]
			if !ok {
				continue
			}
			w.reactToObservation(ctx, b, obs, personaCfg, roomCfg, room, autoState, nowMS)
			return nil
		}
		return nil
	}
}

func (w *Worker) reactToObservation(ctx context.Context, b *bus.Bus, obs protocol.StreamObservation, gateCfg Config, roomCfg RoomConfig, room *state.RoomState, autoState *state.AutoCommentaryState, nowMS int64) {
	decision := DecideAuto(obs, gateCfg, roomCfg, room, autoState, nowMS)
	if !decision.Emit {
		w.Counters.AutoCommentarySuppressed.Add(1)
		return
	}

	personaID, reason := SelectPersona(obs, roomCfg.EnabledPersonas, autoState, roomCfg.Timing.AvoidRepeatLastN)
	if personaID == "" {
		w.Counters.AutoCommentarySuppressed.Add(1)
		return
	}
	personaCfg, ok := w.PersonaCfgs[personaID]
	if !ok {
		w.Counters.AutoCommentarySuppressed.Add(1)
		return
	}

	if autoState.DedupeSeenOrMark(obs.ID, personaID, nowMS, roomCfg.Timing.DedupeWindowMS) {
		w.Counters.AutoCommentarySuppressed.Add(1)
		return
	}

	text, err := w.Generator.Generate(reply.Request{
		EventID:            obs.ID,
		Content:            obs.Summary,
		Persona:            personaCfg,
		Room:               roomCfg,
		LLMMaxOutputChars:  personaCfg.Safety.MaxChars,
		ObservationContext: reason,
		ObservationSummary: obs.Summary,
		PromptID:           "persona_auto_commentary",
		PromptPurpose:      "persona_auto_commentary",
	})
	if err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("persona_id", personaID).Str("obs_id", obs.ID).Msg("persona_worker_auto_generate_failed")
		w.Counters.AutoCommentarySuppressed.Add(1)
		return
	}

	botMsg := protocol.ChatMessage{
		ID:          uuid.NewString(),
		TS:          time.Now().UTC(),
		RoomID:      obs.RoomID,
		Origin:      protocol.OriginBot,
		Content:     text,
		DisplayName: personaCfg.DisplayName,
		Badges:      personaCfg.Presentation.Badges,
		Style:       personaCfg.Presentation.Style,
		Trace: &protocol.Trace{
			PersonaID:      personaID,
			WorkerInstance: w.InstanceID,
			ProcessedBy:    []string{"persona_worker"},
		},
	}

	payload, err := json.Marshal(botMsg)
	if err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("persona_id", personaID).Msg("persona_worker_auto_marshal_failed")
		w.Counters.AppendFailures.Add(1)
		return
	}
	if _, err := b.Append(ctx, w.IngestName, map[string]any{"data": string(payload)}); err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("persona_id", personaID).Msg("persona_worker_auto_append_failed")
		w.Counters.AppendFailures.Add(1)
		return
	}

	room.LastAutoSpokeAtMS = nowMS
	room.AutoMessageTimes.Add(nowMS)
	autoState.IncrementObservationCount(obs.ID, nowMS, roomCfg.Timing.DedupeWindowMS)
	autoState.RecordEmit(obs.ID, personaID, nowMS)
	w.Counters.AutoCommentaryEmitted.Add(1)
}
