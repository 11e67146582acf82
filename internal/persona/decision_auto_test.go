package persona_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/persona"
	"github.com/chattersys/chatter/internal/protocol"
	"github.com/chattersys/chatter/internal/state"
)

func TestInterestScore_MonotoneNonNegative(t *testing.T) {
	low := persona.InterestScore(protocol.StreamObservation{HypeLevel: 0})
	high := persona.InterestScore(protocol.StreamObservation{HypeLevel: 1, Entities: []string{"a", "b", "c", "d"}, Tags: []string{"hype"}})
	assert.GreaterOrEqual(t, low, 0.0)
	assert.Greater(t, high, low)
}

func TestDecideAuto_NotInteresting(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", HypeLevel: 0}
	cfg := persona.Config{HypeThreshold: 0.9}
	room := persona.RoomConfig{}
	roomState := state.NewRoomState(50, 10000, 60000)
	autoState := state.NewAutoCommentaryState(2)

	got := persona.DecideAuto(obs, cfg, room, roomState, autoState, 1000)
	assert.False(t, got.Emit)
	assert.Equal(t, "not_interesting", got.Reason)
}

func TestDecideAuto_MomentumRate(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", HypeLevel: 1}
	cfg := persona.Config{HypeThreshold: 0.1}
	room := persona.RoomConfig{Timing: persona.Timing{MomentumMaxCount: 1}}
	roomState := state.NewRoomState(50, 10000, 60000)
	roomState.AutoMessageTimes.Add(900)
	autoState := state.NewAutoCommentaryState(2)

	got := persona.DecideAuto(obs, cfg, room, roomState, autoState, 1000)
	assert.False(t, got.Emit)
	assert.Equal(t, "momentum_rate", got.Reason)
}

func TestDecideAuto_GatesPassedEmits(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", HypeLevel: 1}
	cfg := persona.Config{HypeThreshold: 0.1}
	room := persona.RoomConfig{}
	roomState := state.NewRoomState(50, 10000, 60000)
	autoState := state.NewAutoCommentaryState(2)

	got := persona.DecideAuto(obs, cfg, room, roomState, autoState, 1000)
	assert.True(t, got.Emit)
	assert.Equal(t, "gates_passed", got.Reason)
}

func TestDecideAuto_SummaryDedupe(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", HypeLevel: 1, Summary: "a big clip happened"}
	cfg := persona.Config{HypeThreshold: 0.1}
	room := persona.RoomConfig{Timing: persona.Timing{SummaryDedupeEnabled: true, SummaryDedupeTTLMS: 60000}}
	roomState := state.NewRoomState(50, 10000, 60000)
	autoState := state.NewAutoCommentaryState(2)

	first := persona.DecideAuto(obs, cfg, room, roomState, autoState, 1000)
	assert.True(t, first.Emit)

	obs2 := obs
	obs2.ID = "obs-2"
	second := persona.DecideAuto(obs2, cfg, room, roomState, autoState, 1500)
	assert.False(t, second.Emit)
	assert.Equal(t, "summary_dedupe", second.Reason)
}

func TestSelectPersona_MentionTargetedWinsOverHash(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", RoomID: "lobby", Summary: "shoutout to echo for that play"}
	autoState := state.NewAutoCommentaryState(2)

	id, reason := persona.SelectPersona(obs, []string{"sparkle", "echo"}, autoState, 2)
	assert.Equal(t, "echo", id)
	assert.Equal(t, "mention_targeted", reason)
}

func TestSelectPersona_DiversityFilteredExcludesRecent(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", RoomID: "lobby", Summary: "nothing special"}
	autoState := state.NewAutoCommentaryState(2)
	autoState.RecordEmit("obs-0", "sparkle", 500)

	id, reason := persona.SelectPersona(obs, []string{"sparkle", "echo"}, autoState, 2)
	assert.Equal(t, "echo", id)
	assert.Equal(t, "diversity_filtered", reason)
}

func TestSelectPersona_DiversityFallbackWhenAllRecent(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", RoomID: "lobby", Summary: "nothing special"}
	autoState := state.NewAutoCommentaryState(2)
	autoState.RecordEmit("obs-0", "sparkle", 500)
	autoState.RecordEmit("obs-0b", "echo", 600)

	id, reason := persona.SelectPersona(obs, []string{"sparkle", "echo"}, autoState, 2)
	assert.Contains(t, []string{"sparkle", "echo"}, id)
	assert.Equal(t, "diversity_fallback", reason)
}

func TestSelectPersona_Deterministic(t *testing.T) {
	obs := protocol.StreamObservation{ID: "obs-1", RoomID: "lobby", Summary: "nothing special"}
	autoState := state.NewAutoCommentaryState(2)

	id1, reason1 := persona.SelectPersona(obs, []string{"sparkle", "echo"}, autoState, 2)
	id2, reason2 := persona.SelectPersona(obs, []string{"sparkle", "echo"}, autoState, 2)
	assert.Equal(t, id1, id2)
	assert.Equal(t, reason1, reason2)
}
