package state

import (
	"sync"
	"time"

	"github.com/chattersys/chatter/internal/protocol"
)

// RoomState holds the per-room recent-message ring, the bot-publish budget
// window, and the general event-rate window.
type RoomState struct {
	mu              sync.Mutex
	maxRecent       int
	recent          []protocol.ChatMessage
	BotPublishTimes *SlidingWindow // 10s bot-publish budget window
	EventTimes      *SlidingWindow // general rate window, used for rate_10s

	// Auto-commentary bookkeeping.
	LastAutoSpokeAtMS int64
	AutoMessageTimes  *SlidingWindow // momentum window
}

// NewRoomState constructs room state with the given recent-message capacity
// and its three sliding windows: the bot-budget and event-rate windows, both
// botBudgetWindowMS wide, and the momentum window for auto-commentary.
func NewRoomState(maxRecent int, botBudgetWindowMS, momentumWindowMS int64) *RoomState {
	return &RoomState{
		maxRecent:        maxRecent,
		BotPublishTimes:  NewSlidingWindow(botBudgetWindowMS),
		EventTimes:       NewSlidingWindow(botBudgetWindowMS),
		AutoMessageTimes: NewSlidingWindow(momentumWindowMS),
	}
}

// PushRecent appends msg to the recent-message ring, evicting the oldest
// entry once maxRecent is exceeded.
func (r *RoomState) PushRecent(msg protocol.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = append(r.recent, msg)
	if len(r.recent) > r.maxRecent {
		r.recent = r.recent[len(r.recent)-r.maxRecent:]
	}
}

// Recent returns a snapshot copy of the recent-message ring.
func (r *RoomState) Recent() []protocol.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.ChatMessage, len(r.recent))
	copy(out, r.recent)
	return out
}

// Rooms is a process-local, concurrency-safe registry of RoomState keyed by
// room id, created lazily on first access.
type Rooms struct {
	mu    sync.Mutex
	byID  map[string]*RoomState
	newFn func() *RoomState
}

// NewRooms constructs a registry that lazily creates RoomState via newFn.
func NewRooms(newFn func() *RoomState) *Rooms {
	return &Rooms{byID: make(map[string]*RoomState), newFn: newFn}
}

// Get returns the RoomState for roomID, creating it if absent.
func (r *Rooms) Get(roomID string) *RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.byID[roomID]
	if !ok {
		rs = r.newFn()
		r.byID[roomID] = rs
	}
	return rs
}

// NowMS returns the current time in epoch milliseconds.
func NowMS() int64 {
	return time.Now().UnixMilli()
}
