package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("CONFIG_TEST_ADDR", "")
	assert.Equal(t, ":9090", GetEnv("CONFIG_TEST_ADDR", ":9090"))

	t.Setenv("CONFIG_TEST_ADDR", ":7070")
	assert.Equal(t, ":7070", GetEnv("CONFIG_TEST_ADDR", ":9090"))
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("CONFIG_TEST_INT", "12")
	t.Setenv("CONFIG_TEST_BAD_INT", "twelve")
	t.Setenv("CONFIG_TEST_DURATION", "1m30s")
	t.Setenv("CONFIG_TEST_LIST", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("CONFIG_TEST_BOOL", "false")
	t.Setenv("CONFIG_TEST_BAD_BOOL", "nope")

	assert.Equal(t, 12, GetInt("CONFIG_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("CONFIG_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, GetDuration("CONFIG_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, GetList("CONFIG_TEST_LIST"))
	assert.False(t, GetBool("CONFIG_TEST_BOOL", true))
	assert.True(t, GetBool("CONFIG_TEST_BAD_BOOL", true))
	assert.True(t, GetBool("CONFIG_TEST_UNSET_BOOL", true))
}

func TestBreakerFromEnv(t *testing.T) {
	t.Setenv("BREAKER_FAILURE_RATE", "25")
	t.Setenv("BREAKER_OPEN_DURATION", "30s")

	cfg, err := Breaker()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, cfg.FailureRateThreshold, 0.001)
	assert.Equal(t, 30*time.Second, cfg.WaitDurationInOpenState)
	assert.NotNil(t, cfg.IsIgnored)
}

func TestBreakerRejectsInvalidSettings(t *testing.T) {
	t.Setenv("BREAKER_WINDOW_SIZE", "0")

	_, err := Breaker()
	assert.Error(t, err)
}
