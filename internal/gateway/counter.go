package gateway

import (
	"encoding/json"

	"github.com/chattersys/chatter/internal/protocol"
)

func marshalMessage(msg protocol.ChatMessage) ([]byte, error) {
	return json.Marshal(msg)
}
