// Package config loads process configuration from environment variables,
// following the getenv/getenvInt/getenvDuration idiom each chatter service
// uses at startup. Room, persona, and moderation configuration is loaded
// from JSON files referenced by env vars. Only the chat message and stream
// observation schemas are compiled with JSON Schema; moderation pattern files
// are checked by compiling each regex, persona/room files by their id field,
// and none of these config files is validated against a JSON Schema.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Getenv returns the environment variable value, or def when unset or empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetenvInt parses an integer env var, falling back to def on error or absence.
func GetenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// GetenvFloat parses a float env var, falling back to def on error or absence.
func GetenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// GetenvBool parses a bool env var ("1", "true", "yes" are true), falling
// back to def on error or absence.
func GetenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

// GetenvDuration parses a time.Duration env var, falling back to def.
func GetenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// ObsConfig controls optional OpenTelemetry wiring, shared by all services.
type ObsConfig struct {
	OTLP           string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// LoadObsConfig reads OTLP/service identity settings from the environment.
// OTLP is left empty when unset; observability.InitOTel returns an error for
// an empty endpoint, which the service mains log as a warning before running
// without tracing/metrics export.
func LoadObsConfig(serviceName string) ObsConfig {
	return ObsConfig{
		OTLP:           Getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:    Getenv("OTEL_SERVICE_NAME", serviceName),
		ServiceVersion: Getenv("SERVICE_VERSION", "dev"),
		Environment:    Getenv("DEPLOY_ENV", "development"),
	}
}

// LogConfig controls zerolog setup, shared by all services.
type LogConfig struct {
	Path  string
	Level string
}

// LoadLogConfig reads logging settings from the environment.
func LoadLogConfig() LogConfig {
	return LogConfig{
		Path:  Getenv("LOG_PATH", ""),
		Level: Getenv("LOG_LEVEL", "info"),
	}
}
