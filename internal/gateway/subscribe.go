package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type subscribeRequest struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type subscribedAck struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// ServeSubscribe upgrades an HTTP connection to a WebSocket, performs the
// subscribe handshake, and blocks reading-and-discarding
// frames until the client disconnects, at which point it unsubscribes.
func (f *FanOut) ServeSubscribe(defaultRoomID string, subscribeTimeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("gateway_upgrade_failed")
			return
		}
		defer conn.Close()

		roomID := f.handshake(conn, defaultRoomID, subscribeTimeout)
		f.Subscribe(roomID, conn)
		defer f.Unsubscribe(roomID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// handshake reads one client message within timeout. If it parses as
// {"type":"subscribe","room_id":"<str>"} that room_id is used; otherwise
// (timeout, malformed, or wrong type) the default room is used. In both
// cases a "subscribed" ack is sent.
func (f *FanOut) handshake(conn *websocket.Conn, defaultRoomID string, timeout time.Duration) string {
	roomID := defaultRoomID

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, raw, err := conn.ReadMessage()
	_ = conn.SetReadDeadline(time.Time{})

	if err == nil {
		var req subscribeRequest
		if jsonErr := json.Unmarshal(raw, &req); jsonErr == nil && req.Type == "subscribe" && req.RoomID != "" {
			roomID = req.RoomID
		}
	}

	ack, _ := json.Marshal(subscribedAck{Type: "subscribed", RoomID: roomID})
	_ = conn.WriteMessage(websocket.TextMessage, ack)
	return roomID
}
