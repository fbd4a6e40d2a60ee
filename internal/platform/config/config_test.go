package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "condogov", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.False(t, cfg.NATSEnabled())
	assert.Equal(t, 7*24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.True(t, cfg.EnableOutboxRelay)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, "Europe/Istanbul", cfg.MinutesLocation().String())
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "governance")
	t.Setenv("NATS_URL", " nats://localhost:4222 ")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IDEMPOTENCY_TTL", "24h")
	t.Setenv("ENABLE_OUTBOX_RELAY", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "governance", cfg.ServiceName)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.True(t, cfg.NATSEnabled())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.EnableOutboxRelay)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "many")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadRejectsNonPositiveBatchSize(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "0")

	_, err := Load()

	assert.ErrorContains(t, err, "OUTBOX_BATCH_SIZE")
}

func TestLoadRejectsUnknownMinutesTimezone(t *testing.T) {
	t.Setenv("MINUTES_TIMEZONE", "Mars/Olympus")

	_, err := Load()

	assert.ErrorContains(t, err, "MINUTES_TIMEZONE")
}

func TestMinutesLocationFallsBackToUTC(t *testing.T) {
	t.Setenv("MINUTES_TIMEZONE", "UTC")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.MinutesLocation())
	assert.Equal(t, time.UTC, Config{MinutesTimezone: "Nowhere/Else"}.MinutesLocation())
}
