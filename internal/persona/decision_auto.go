package persona

import (
	"sort"
	"strings"

	"github.com/chattersys/chatter/internal/detscore"
	"github.com/chattersys/chatter/internal/protocol"
	"github.com/chattersys/chatter/internal/state"
	"github.com/chattersys/chatter/internal/textutil"
)

// AutoDecision is the outcome of the auto-commentary gate chain for one
// StreamObservation, plus (on emit) the selected persona.
type AutoDecision struct {
	Emit      bool
	Reason    string
	PersonaID string
	Tags      map[string]any
}

const (
	wHype     = 0.5
	wMentions = 0.2
	wEntities = 0.2
	wTagHype  = 0.1
)

// InterestScore computes a monotone, non-negative interest score from an
// observation's hype level, entity count, and tags.
func InterestScore(obs protocol.StreamObservation) float64 {
	score := clamp01(obs.HypeLevel) * wHype
	if len(obs.Entities) > 0 {
		score += wMentions
	}
	n := len(obs.Entities)
	if n > 3 {
		n = 3
	}
	score += (float64(n) / 3.0) * wEntities
	for _, tag := range obs.Tags {
		if strings.EqualFold(tag, "hype") {
			score += wTagHype
			break
		}
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// interesting implements the auto-commentary engine's first gate: is this
// observation worth reacting to at all.
func interesting(obs protocol.StreamObservation, cfg Config) bool {
	if obs.HypeLevel >= cfg.HypeThreshold {
		return true
	}
	normTriggers := make(map[string]struct{}, len(cfg.TriggerTags))
	for _, t := range cfg.TriggerTags {
		normTriggers[strings.ToLower(t)] = struct{}{}
	}
	for _, tag := range obs.Tags {
		if _, ok := normTriggers[strings.ToLower(tag)]; ok {
			return true
		}
	}
	if cfg.TriggerOnEntities && len(obs.Entities) > 0 {
		return true
	}
	return InterestScore(obs) >= cfg.HypeThreshold
}

// DecideAuto runs the auto-commentary gate chain: interest, momentum,
// room-rate, per-observation cap, and summary dedupe. personaCfg supplies
// only the interest gate's hype threshold and trigger settings.
func DecideAuto(
	obs protocol.StreamObservation,
	personaCfg Config,
	room RoomConfig,
	roomState *state.RoomState,
	autoState *state.AutoCommentaryState,
	nowMS int64,
) AutoDecision {
	if !interesting(obs, personaCfg) {
		return AutoDecision{Reason: "not_interesting"}
	}

	momentumCount := roomState.AutoMessageTimes.Count(nowMS)
	if room.Timing.MomentumMaxCount > 0 && momentumCount >= room.Timing.MomentumMaxCount {
		return AutoDecision{Reason: "momentum_rate"}
	}
	if room.Timing.MomentumMinIntervalMS > 0 && nowMS-roomState.LastAutoSpokeAtMS < room.Timing.MomentumMinIntervalMS {
		return AutoDecision{Reason: "momentum_interval"}
	}

	if room.Timing.RoomRateLimitMS > 0 && nowMS-roomState.LastAutoSpokeAtMS < room.Timing.RoomRateLimitMS {
		return AutoDecision{Reason: "room_rate"}
	}

	if room.Timing.MaxMessagesPerObs > 0 && autoState.ObservationCount(obs.ID, nowMS) >= room.Timing.MaxMessagesPerObs {
		return AutoDecision{Reason: "max_per_observation"}
	}

	if room.Timing.SummaryDedupeEnabled {
		normalized := textutil.NormalizeSummary(obs.Summary)
		if autoState.SummarySeenOrMark(normalized, nowMS, room.Timing.SummaryDedupeTTLMS) {
			return AutoDecision{Reason: "summary_dedupe"}
		}
	}

	return AutoDecision{Emit: true, Reason: "gates_passed"}
}

// SelectPersona deterministically picks one persona from candidates to
// react to obs: a diversity filter first excludes recently-spoken personas
// (falling back to all candidates if that leaves none), then each remaining
// candidate gets a stable hash score plus a boost when the summary or
// entities mention it, and the highest score wins (ties go to the lower id).
// candidates must already be the room's enabled persona ids.
func SelectPersona(obs protocol.StreamObservation, candidates []string, autoState *state.AutoCommentaryState, avoidRepeatLastN int) (string, string) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	recent := make(map[string]struct{})
	for _, id := range autoState.RecentPersonas() {
		recent[id] = struct{}{}
	}

	filtered := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if _, skip := recent[id]; !skip {
			filtered = append(filtered, id)
		}
	}

	diversityFallback := false
	if len(filtered) == 0 {
		filtered = sorted
		diversityFallback = true
	}
	if len(filtered) == 0 {
		return "", "no_candidates"
	}

	obsSeed := obs.ID
	if obsSeed == "" {
		obsSeed = obs.Summary
	}
	if obsSeed == "" {
		obsSeed = "obs"
	}

	lowerSummary := strings.ToLower(obs.Summary)
	lowerEntities := make(map[string]struct{}, len(obs.Entities))
	for _, e := range obs.Entities {
		lowerEntities[strings.ToLower(e)] = struct{}{}
	}

	type scored struct {
		id        string
		score     float64
		mentioned bool
	}
	best := scored{score: -1}

	for _, id := range filtered {
		seed := detscore.HashSeed(obsSeed, obs.RoomID, id)
		score := detscore.HashToUnit(seed)

		lowerID := strings.ToLower(id)
		_, inEntities := lowerEntities[lowerID]
		mentioned := textutil.ContainsWholeWordOrAt(lowerSummary, lowerID) || inEntities
		if mentioned {
			score += mentionBoost
		}

		if score > best.score || (score == best.score && id < best.id) {
			best = scored{id: id, score: score, mentioned: mentioned}
		}
	}

	reason := "deterministic"
	switch {
	case best.mentioned:
		reason = "mention_targeted"
	case diversityFallback:
		reason = "diversity_fallback"
	case len(filtered) < len(sorted):
		reason = "diversity_filtered"
	}
	return best.id, reason
}

const mentionBoost = 10.0
