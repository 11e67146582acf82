// Package gateway implements the ingest safety pipeline and the WebSocket
// fan-out, following a goroutine-per-connection broadcast idiom adapted to
// a bounded, non-blocking queue with lazy dead-subscriber reaping.
package gateway

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/protocol"
)

// broadcastItem is one queued (room, message) pair awaiting dispatch.
type broadcastItem struct {
	roomID  string
	message protocol.ChatMessage
}

// FanOut owns the per-room subscriber sets and the single broadcast worker
// draining a bounded queue.
type FanOut struct {
	mu          sync.Mutex
	subscribers map[string]map[*websocket.Conn]struct{}

	queue chan broadcastItem

	droppedBroadcasts  *metrics.Counter
	delivered          *metrics.Counter
	subscriberFailures *metrics.Counter
}

// NewFanOut constructs a FanOut with the given bounded queue capacity.
func NewFanOut(queueCapacity int) *FanOut {
	f := &FanOut{
		subscribers:        make(map[string]map[*websocket.Conn]struct{}),
		queue:              make(chan broadcastItem, queueCapacity),
		droppedBroadcasts:  &metrics.Counter{},
		delivered:          &metrics.Counter{},
		subscriberFailures: &metrics.Counter{},
	}
	return f
}

// Subscribe registers conn as a subscriber of roomID.
func (f *FanOut) Subscribe(roomID string, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subscribers[roomID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		f.subscribers[roomID] = set
	}
	set[conn] = struct{}{}
}

// Unsubscribe removes conn from roomID's set, deleting the room key entirely
// once its last subscriber is gone.
func (f *FanOut) Unsubscribe(roomID string, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(roomID, conn)
}

func (f *FanOut) removeLocked(roomID string, conn *websocket.Conn) {
	set, ok := f.subscribers[roomID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(f.subscribers, roomID)
	}
}

// EnqueueBroadcast is non-blocking: on a full queue it returns false and the
// caller must count the message as dropped.
func (f *FanOut) EnqueueBroadcast(roomID string, msg protocol.ChatMessage) bool {
	select {
	case f.queue <- broadcastItem{roomID: roomID, message: msg}:
		return true
	default:
		f.droppedBroadcasts.Add(1)
		return false
	}
}

// Run drains the broadcast queue until it is closed. Each item is serialized
// once and dispatched concurrently to every current subscriber of its room;
// subscribers whose send fails are reaped lazily.
func (f *FanOut) Run() {
	for item := range f.queue {
		f.dispatch(item)
	}
}

// Close stops accepting further broadcasts; Run returns once drained.
func (f *FanOut) Close() {
	close(f.queue)
}

func (f *FanOut) dispatch(item broadcastItem) {
	payload, err := marshalMessage(item.message)
	if err != nil {
		log.Error().Err(err).Msg("gateway_broadcast_marshal_failed")
		return
	}

	f.mu.Lock()
	set := f.subscribers[item.roomID]
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	var wg sync.WaitGroup
	var deadMu sync.Mutex
	var dead []*websocket.Conn

	for _, c := range conns {
		wg.Add(1)
		go func(c *websocket.Conn) {
			defer wg.Done()
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				deadMu.Lock()
				dead = append(dead, c)
				deadMu.Unlock()
				return
			}
			f.delivered.Add(1)
		}(c)
	}
	wg.Wait()

	if len(dead) == 0 {
		return
	}
	f.subscriberFailures.Add(int64(len(dead)))
	f.mu.Lock()
	for _, c := range dead {
		f.removeLocked(item.roomID, c)
	}
	f.mu.Unlock()
}

// Stats is a snapshot of fan-out counters for the /stats endpoint.
type Stats struct {
	Delivered          int64 `json:"delivered"`
	DroppedBroadcasts  int64 `json:"dropped_broadcasts"`
	SubscriberFailures int64 `json:"subscriber_failures"`
}

func (f *FanOut) Snapshot() Stats {
	return Stats{
		Delivered:          f.delivered.Load(),
		DroppedBroadcasts:  f.droppedBroadcasts.Load(),
		SubscriberFailures: f.subscriberFailures.Load(),
	}
}
