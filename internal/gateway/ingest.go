package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chattersys/chatter/internal/bus"
	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/moderation"
	"github.com/chattersys/chatter/internal/observability"
	"github.com/chattersys/chatter/internal/protocol"
)

// IngestCounters tracks consumed, broadcast, and dropped message counts.
type IngestCounters struct {
	Consumed  metrics.Counter `json:"consumed"`
	Broadcast metrics.Counter `json:"broadcast"`
	Dropped   metrics.Counter `json:"dropped"`
}

// IngestConsumer implements the gateway's safety pipeline: validate,
// sanitize, moderate, trace-enrich, fan out, and re-emit to firehose.
type IngestConsumer struct {
	Validator    *protocol.Validator
	Patterns     []moderation.Pattern
	MaxChars     int
	FirehoseName string
	FanOut       *FanOut
	Counters     *IngestCounters
}

// Handle is a bus.Handler bound to the gateway's ingest stream.
func (c *IngestConsumer) Handle() bus.Handler {
	return func(ctx context.Context, b *bus.Bus, id string, data []byte) error {
		c.Counters.Consumed.Add(1)

		var msg protocol.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("id", id).Msg("gateway_ingest_decode_failed")
			c.Counters.Dropped.Add(1)
			return nil
		}
		if c.Validator != nil {
			if err := c.Validator.ValidateRaw(data); err != nil {
				observability.LoggerWithTrace(ctx).Warn().Err(err).Str("id", id).Msg("gateway_ingest_schema_invalid")
				c.Counters.Dropped.Add(1)
				return nil
			}
		}

		sanitized := moderation.Sanitize(msg.Content, c.MaxChars)
		if sanitized == "" {
			c.Counters.Dropped.Add(1)
			return nil
		}

		result := moderation.Apply(sanitized, c.Patterns)
		if result.Action == protocol.ModerationRedact && result.Content == "" {
			c.Counters.Dropped.Add(1)
			return nil
		}
		msg.Content = result.Content
		msg.Moderation = &protocol.Moderation{Action: result.Action, Reasons: result.Reasons}

		enrichTrace(&msg)

		payload, err := json.Marshal(msg)
		if err != nil {
			observability.LoggerWithTrace(ctx).Error().Err(err).Str("id", id).Msg("gateway_ingest_marshal_failed")
			c.Counters.Dropped.Add(1)
			return nil
		}

		if c.FanOut.EnqueueBroadcast(msg.RoomID, msg) {
			c.Counters.Broadcast.Add(1)
		}

		if _, err := b.Append(ctx, c.FirehoseName, map[string]any{"data": string(payload)}); err != nil {
			observability.LoggerWithTrace(ctx).Error().Err(err).Str("id", id).Msg("gateway_firehose_append_failed")
		}
		return nil
	}
}

// enrichTrace ensures trace.producer, trace.processed_by, and
// trace.gateway_ts are populated before the message fans out.
func enrichTrace(msg *protocol.ChatMessage) {
	if msg.Trace == nil {
		msg.Trace = &protocol.Trace{}
	}
	if msg.Trace.Producer == "" {
		msg.Trace.Producer = "unknown"
	}
	if msg.Trace.GatewayTS == "" {
		msg.Trace.GatewayTS = time.Now().UTC().Format(time.RFC3339)
	}
	hasGateway := false
	for _, p := range msg.Trace.ProcessedBy {
		if p == "chat_gateway" {
			hasGateway = true
			break
		}
	}
	if !hasGateway {
		msg.Trace.ProcessedBy = append(msg.Trace.ProcessedBy, "chat_gateway")
	}
}
