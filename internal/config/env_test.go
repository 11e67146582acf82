package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chattersys/chatter/internal/config"
)

func TestGetenv_FallsBackOnUnset(t *testing.T) {
	t.Setenv("CHATTER_TEST_STR", "")
	assert.Equal(t, "default", config.Getenv("CHATTER_TEST_STR", "default"))
	t.Setenv("CHATTER_TEST_STR", "value")
	assert.Equal(t, "value", config.Getenv("CHATTER_TEST_STR", "default"))
}

func TestGetenvInt_FallsBackOnInvalid(t *testing.T) {
	t.Setenv("CHATTER_TEST_INT", "not-a-number")
	assert.Equal(t, 7, config.GetenvInt("CHATTER_TEST_INT", 7))
	t.Setenv("CHATTER_TEST_INT", "42")
	assert.Equal(t, 42, config.GetenvInt("CHATTER_TEST_INT", 7))
}

func TestGetenvFloat_FallsBackOnInvalid(t *testing.T) {
	t.Setenv("CHATTER_TEST_FLOAT", "nope")
	assert.Equal(t, 0.5, config.GetenvFloat("CHATTER_TEST_FLOAT", 0.5))
	t.Setenv("CHATTER_TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, config.GetenvFloat("CHATTER_TEST_FLOAT", 0.5))
}

func TestGetenvBool_RecognizesVariants(t *testing.T) {
	for _, v := range []string{"1", "true", "yes", "on", "TRUE"} {
		t.Setenv("CHATTER_TEST_BOOL", v)
		assert.True(t, config.GetenvBool("CHATTER_TEST_BOOL", false), v)
	}
	for _, v := range []string{"0", "false", "no", "off"} {
		t.Setenv("CHATTER_TEST_BOOL", v)
		assert.False(t, config.GetenvBool("CHATTER_TEST_BOOL", true), v)
	}
	t.Setenv("CHATTER_TEST_BOOL", "")
	assert.True(t, config.GetenvBool("CHATTER_TEST_BOOL", true))
}

func TestGetenvDuration_FallsBackOnInvalid(t *testing.T) {
	t.Setenv("CHATTER_TEST_DUR", "nope")
	assert.Equal(t, 5*time.Second, config.GetenvDuration("CHATTER_TEST_DUR", 5*time.Second))
	t.Setenv("CHATTER_TEST_DUR", "10s")
	assert.Equal(t, 10*time.Second, config.GetenvDuration("CHATTER_TEST_DUR", 5*time.Second))
}

func TestLoadObsConfig_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("SERVICE_VERSION", "")
	t.Setenv("DEPLOY_ENV", "")

	cfg := config.LoadObsConfig("chat-gateway")
	assert.Equal(t, "", cfg.OTLP)
	assert.Equal(t, "chat-gateway", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadLogConfig_Defaults(t *testing.T) {
	t.Setenv("LOG_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	cfg := config.LoadLogConfig()
	assert.Equal(t, "", cfg.Path)
	assert.Equal(t, "info", cfg.Level)
}
