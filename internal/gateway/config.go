package gateway

import (
	"time"

	"github.com/chattersys/chatter/internal/config"
)

// Config is the gateway's environment-sourced tuning surface.
type Config struct {
	ContentMaxLength    int
	BroadcastQueueSize  int
	SubscribeTimeout    time.Duration
	DefaultRoomID       string
	PatternsFile        string
	MessageSchemaPath   string
}

// LoadConfig reads gateway configuration from the environment.
func LoadConfig() Config {
	return Config{
		ContentMaxLength:   config.GetenvInt("GATEWAY_CONTENT_MAX_LENGTH", 500),
		BroadcastQueueSize: config.GetenvInt("GATEWAY_BROADCAST_QUEUE_SIZE", 256),
		SubscribeTimeout:   config.GetenvDuration("GATEWAY_SUBSCRIBE_TIMEOUT", 5*time.Second),
		DefaultRoomID:      config.Getenv("GATEWAY_DEFAULT_ROOM_ID", "lobby"),
		PatternsFile:       config.Getenv("GATEWAY_PATTERNS_FILE", "configs/moderation_patterns.json"),
		MessageSchemaPath:  config.Getenv("GATEWAY_MESSAGE_SCHEMA", "configs/schemas/chat_message.schema.json"),
	}
}
