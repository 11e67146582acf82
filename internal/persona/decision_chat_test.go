package persona_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/persona"
	"github.com/chattersys/chatter/internal/protocol"
	"github.com/chattersys/chatter/internal/state"
)

func baseMsg(nowMS int64) protocol.ChatMessage {
	return protocol.ChatMessage{
		ID:      "msg-1",
		RoomID:  "lobby",
		Content: "hello there",
		Origin:  protocol.OriginHuman,
		TS:      time.UnixMilli(nowMS),
	}
}

func baseConfig() persona.Config {
	return persona.Config{PersonaID: "sparkle", DisplayName: "Sparkle"}
}

func baseRoom() persona.RoomConfig {
	return persona.RoomConfig{
		RoomID: "lobby",
		Timing: persona.Timing{
			MaxReactAgeS:     30,
			SoftCooldownMS:   0,
			HardCooldownMS:   0,
			MaxBotMsgsPer10s: 5,
			PBase:            1.0,
		},
	}
}

func TestDecideChat_BotOriginShortCircuits(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	msg.Origin = protocol.OriginBot
	room := baseRoom()
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.False(t, got.Emit)
	assert.Equal(t, "bot_origin", got.Reason)
}

func TestDecideChat_TooOld(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now - 60000)
	room := baseRoom()
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.False(t, got.Emit)
	assert.Equal(t, "too_old", got.Reason)
}

func TestDecideChat_WrongRoom(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	msg.RoomID = "other"
	room := baseRoom()
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.False(t, got.Emit)
	assert.Equal(t, "wrong_room", got.Reason)
}

func TestDecideChat_Cooldown(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	room := baseRoom()
	room.Timing.SoftCooldownMS = 5000
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)
	persStats.RecordPublish(now - 1000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.False(t, got.Emit)
	assert.Equal(t, "cooldown", got.Reason)
}

func TestDecideChat_Budget(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	room := baseRoom()
	room.Timing.MaxBotMsgsPer10s = 1
	roomState := state.NewRoomState(50, 10000, 60000)
	roomState.BotPublishTimes.Add(now - 100)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.False(t, got.Emit)
	assert.Equal(t, "budget", got.Reason)
}

func TestDecideChat_ForcedMarkerAlwaysEmits(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	msg.Content = "trigger E2E_TEST_12345 now"
	room := baseRoom()
	room.Timing.PBase = 0 // would never pass the probabilistic gate
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.True(t, got.Emit)
	assert.Equal(t, "e2e_forced", got.Reason)
}

func TestDecideChat_PGateAlwaysEmitsWhenPBaseIsOne(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	room := baseRoom()
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.True(t, got.Emit)
	assert.Equal(t, "p_gate", got.Reason)
	assert.Contains(t, got.Tags, "h_value")
}

func TestDecideChat_PGateNeverEmitsWhenPBaseIsZero(t *testing.T) {
	now := int64(1000000)
	msg := baseMsg(now)
	room := baseRoom()
	room.Timing.PBase = 0
	roomState := state.NewRoomState(50, 10000, 60000)
	persStats := state.NewPersonaStats(600000)

	got := persona.DecideChat(msg, baseConfig(), room, persStats, roomState, now)
	assert.False(t, got.Emit)
	assert.Equal(t, "p_gate", got.Reason)
}
