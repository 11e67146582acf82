package bus

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chattersys/chatter/internal/config"
)

// Handler processes one entry's "data" payload. It receives the live *Bus
// the loop is currently reading from, so a handler that needs to append to
// a downstream stream (firehose, ingest, observations) can reuse that same
// connection instead of opening its own. Returning an error only affects
// logging — the run loop always acks in terminal cases.
type Handler func(ctx context.Context, bus *Bus, id string, data []byte) error

// RunLoopConfig names the stream/group/consumer a loop reads from.
type RunLoopConfig struct {
	Stream   string
	Group    string
	Consumer string
	Count    int64
	BlockMS  int64
}

// RunLoop is the single per-service run loop: it owns the bus handle,
// retries with exponential backoff on broker loss, and dispatches
// each entry to handle. A missing "data" field causes an immediate
// ack-and-skip without invoking handle, matching the "must not crash on
// malformed entries" requirement.
func RunLoop(ctx context.Context, cfg config.BusConfig, rl RunLoopConfig, handle Handler) error {
	backoff := cfg.MinBackoff

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b, err := Connect(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Str("stream", rl.Stream).Dur("backoff", backoff).Msg("bus_connect_failed")
			if !sleepOrDone(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, cfg.MaxBackoff)
			continue
		}
		backoff = cfg.MinBackoff

		if err := b.EnsureGroup(ctx, rl.Stream, rl.Group); err != nil {
			log.Warn().Err(err).Str("stream", rl.Stream).Msg("bus_ensure_group_failed")
			_ = b.Close()
			if !sleepOrDone(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		runErr := consumeUntilDisconnect(ctx, b, rl, handle)
		_ = b.Close()
		if runErr == nil || errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			return runErr
		}
		log.Warn().Err(runErr).Str("stream", rl.Stream).Msg("bus_loop_reconnecting")
		if !sleepOrDone(ctx, time.Second) {
			return ctx.Err()
		}
	}
}

// consumeUntilDisconnect reads and dispatches entries until the context is
// canceled or the connection is lost, at which point the handle is dropped
// by the caller and re-established on the next RunLoop iteration.
func consumeUntilDisconnect(ctx context.Context, b *Bus, rl RunLoopConfig, handle Handler) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		entries, err := b.Read(ctx, rl.Stream, rl.Group, rl.Consumer, rl.Count, rl.BlockMS)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		for _, e := range entries {
			processEntry(ctx, b, rl, e, handle)
		}
	}
}

func processEntry(ctx context.Context, b *Bus, rl RunLoopConfig, e Entry, handle Handler) {
	data, ok := e.Fields["data"]
	if !ok {
		log.Warn().Str("stream", rl.Stream).Str("id", e.ID).Msg("bus_entry_missing_data")
		ackBestEffort(ctx, b, rl, e.ID)
		return
	}

	if err := handle(ctx, b, e.ID, []byte(data)); err != nil {
		log.Error().Err(err).Str("stream", rl.Stream).Str("id", e.ID).Msg("bus_handler_failed")
	}
	ackBestEffort(ctx, b, rl, e.ID)
}

func ackBestEffort(ctx context.Context, b *Bus, rl RunLoopConfig, id string) {
	if err := b.Ack(ctx, rl.Stream, rl.Group, id); err != nil {
		log.Warn().Err(err).Str("stream", rl.Stream).Str("id", id).Msg("bus_ack_failed")
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// sleepOrDone sleeps for d, returning false early (and without completing
// the sleep) if ctx is canceled first.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func blockDuration(ms int64) time.Duration {
	if ms <= 0 {
		return time.Second
	}
	return time.Duration(ms) * time.Millisecond
}
