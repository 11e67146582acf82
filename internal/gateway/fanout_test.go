package gateway_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/gateway"
	"github.com/chattersys/chatter/internal/protocol"
)

func minimalMessage() protocol.ChatMessage {
	return protocol.ChatMessage{
		ID:      "m1",
		RoomID:  "room-1",
		Origin:  protocol.OriginHuman,
		Content: "hello",
	}
}

// TestFanOut_S6 mirrors  Testable Property S6: with a small bounded
// queue, the first N broadcasts enqueue and the rest are dropped.
func TestFanOut_S6(t *testing.T) {
	f := gateway.NewFanOut(8)

	accepted := 0
	for i := 0; i < 32; i++ {
		if f.EnqueueBroadcast("room-1", minimalMessage()) {
			accepted++
		}
	}
	assert.Equal(t, 8, accepted)
	assert.Equal(t, int64(24), f.Snapshot().DroppedBroadcasts)
}

func TestFanOut_UnsubscribeUnknownRoomDoesNotPanic(t *testing.T) {
	f := gateway.NewFanOut(8)
	f.Unsubscribe("room-1", nil)
	assert.NotPanics(t, func() { f.Unsubscribe("room-1", nil) })
}

func TestFanOut_CloseStopsRun(t *testing.T) {
	f := gateway.NewFanOut(1)
	done := make(chan struct{})
	go func() {
		f.Run()
		close(done)
	}()
	f.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
