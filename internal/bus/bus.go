// Package bus is the thin capability over Redis Streams: connect/retry,
// idempotent group creation, blocking group read, explicit ack, and append.
// Built on go-redis/v9's Streams API with BUSYGROUP-tolerant group setup.
package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/chattersys/chatter/internal/config"
)

// ErrUnreachableBroker is returned by Connect when the broker cannot be
// reached at all (as opposed to a later, transient read/append failure).
var ErrUnreachableBroker = errors.New("bus: broker unreachable")

// Entry is one (id, fields) pair read from a stream.
type Entry struct {
	ID     string
	Fields map[string]string
}

// Bus wraps a redis.Client with the stream operations the chatter services need.
type Bus struct {
	client *redis.Client
}

// Connect dials Redis and verifies connectivity with a PING, returning
// ErrUnreachableBroker on failure.
func Connect(ctx context.Context, cfg config.BusConfig) (*Bus, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("bus: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachableBroker, err)
	}
	return &Bus{client: client}, nil
}

// Close releases the underlying Redis connection pool.
func (b *Bus) Close() error {
	return b.client.Close()
}

// EnsureGroup idempotently creates a consumer group starting at id "0",
// auto-creating the stream if missing. The "BUSYGROUP" error (group already
// exists) is silently swallowed; any other error is surfaced.
func (b *Bus) EnsureGroup(ctx context.Context, stream, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("bus: ensure group %s/%s: %w", stream, group, err)
}

// Read performs a blocking XREADGROUP against stream/group as consumer,
// returning up to count entries. A missing "data" field on any entry in the
// pack is NOT filtered here — callers drop+ack it per spec (the bus layer
// doesn't know which field matters for the caller's purposes; it just hands
// back raw fields).
func (b *Bus) Read(ctx context.Context, stream, group, consumer string, count int64, block int64) ([]Entry, error) {
	res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    blockDuration(block),
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, s := range res {
		for _, msg := range s.Messages {
			fields := make(map[string]string, len(msg.Values))
			for k, v := range msg.Values {
				if sv, ok := v.(string); ok {
					fields[k] = sv
				} else {
					fields[k] = fmt.Sprintf("%v", v)
				}
			}
			out = append(out, Entry{ID: msg.ID, Fields: fields})
		}
	}
	return out, nil
}

// Append adds a new entry to stream with the given fields, returning its
// assigned id.
func (b *Bus) Append(ctx context.Context, stream string, fields map[string]any) (string, error) {
	id, err := b.client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: fields}).Result()
	if err != nil {
		return "", fmt.Errorf("bus: append %s: %w", stream, err)
	}
	return id, nil
}

// Ack acknowledges id on stream/group. Ack failures are best-effort: the
// caller logs and moves on.
func (b *Bus) Ack(ctx context.Context, stream, group, id string) error {
	return b.client.XAck(ctx, stream, group, id).Err()
}
