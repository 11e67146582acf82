package perceiver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/perceiver"
	"github.com/chattersys/chatter/internal/protocol"
)

func seg(id string, tsMS int64, text string) protocol.StreamTranscriptSegment {
	return protocol.StreamTranscriptSegment{ID: id, TS: time.UnixMilli(tsMS), Text: text}
}

func TestRoomJoin_JoinReturnsOnlyWithinWindow(t *testing.T) {
	rj := perceiver.NewRoomJoin(60000)
	rj.AddTranscript(seg("t1", 1000, "first"))
	rj.AddTranscript(seg("t2", 5000, "second"))
	rj.AddTranscript(seg("t3", 20000, "third"))

	got := rj.Join(4000, 2000)
	assert.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)
}

func TestRoomJoin_JoinOrdersByTimestampThenID(t *testing.T) {
	rj := perceiver.NewRoomJoin(60000)
	rj.AddTranscript(seg("b", 1000, "b"))
	rj.AddTranscript(seg("a", 1000, "a"))
	rj.AddTranscript(seg("c", 2000, "c"))

	got := rj.Join(1500, 1000)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestRoomJoin_PruneDropsOldTranscripts(t *testing.T) {
	rj := perceiver.NewRoomJoin(1000)
	rj.AddTranscript(seg("old", 0, "old"))
	rj.AddTranscript(seg("new", 5000, "new"))

	got := rj.Join(5000, 10000)
	var ids []string
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.NotContains(t, ids, "old")
	assert.Contains(t, ids, "new")
}

func TestRoomJoin_ObserveFrameTimestampAdvancesWatermarkForPruning(t *testing.T) {
	rj := perceiver.NewRoomJoin(500)
	rj.AddTranscript(seg("early", 0, "early"))
	rj.ObserveFrameTimestamp(10000)
	rj.AddTranscript(seg("later", 10000, "later"))

	got := rj.Join(10000, 20000)
	var ids []string
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.NotContains(t, ids, "early")
	assert.Contains(t, ids, "later")
}

func TestJoins_GetCreatesLazilyAndReusesInstance(t *testing.T) {
	joins := perceiver.NewJoins(60000)
	a := joins.Get("lobby")
	b := joins.Get("lobby")
	assert.Same(t, a, b)
}
