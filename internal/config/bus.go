package config

import "time"

// Streams carries the canonical stream names used across the bus
// (stream:chat.ingest, stream:chat.firehose, ...).
type Streams struct {
	Ingest        string
	Firehose      string
	Frames        string
	Transcripts   string
	Observations  string
}

// LoadStreams reads stream names from the environment, falling back to the
// documented defaults.
func LoadStreams() Streams {
	return Streams{
		Ingest:       Getenv("STREAM_INGEST", "stream:chat.ingest"),
		Firehose:     Getenv("STREAM_FIREHOSE", "stream:chat.firehose"),
		Frames:       Getenv("STREAM_FRAMES", "stream:frames"),
		Transcripts:  Getenv("STREAM_TRANSCRIPTS", "stream:transcripts"),
		Observations: Getenv("STREAM_OBSERVATIONS", "stream:observations"),
	}
}

// BusConfig controls the Redis Streams connection and retry discipline:
// exponential backoff from 1s up to a 30s cap on broker loss.
type BusConfig struct {
	RedisURL       string
	ReadBlock      time.Duration
	ReadCount      int64
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
	ConsumerName   string
}

// LoadBusConfig reads Redis bus settings from the environment.
func LoadBusConfig(consumerName string) BusConfig {
	return BusConfig{
		RedisURL:     Getenv("REDIS_URL", "redis://localhost:6379/0"),
		ReadBlock:    GetenvDuration("BUS_READ_BLOCK", time.Second),
		ReadCount:    int64(GetenvInt("BUS_READ_COUNT", 16)),
		MinBackoff:   GetenvDuration("BUS_MIN_BACKOFF", time.Second),
		MaxBackoff:   GetenvDuration("BUS_MAX_BACKOFF", 30*time.Second),
		ConsumerName: Getenv("BUS_CONSUMER_NAME", consumerName),
	}
}
