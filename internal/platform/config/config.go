package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"condogov"`
	HTTPPort    string `env:"HTTP_PORT"    envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	NATSURL     string `env:"NATS_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL"      envDefault:"168h"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"    envDefault:"100"`
	EnableOutboxRelay  bool          `env:"ENABLE_OUTBOX_RELAY"  envDefault:"true"`

	MinutesTimezone string `env:"MINUTES_TIMEZONE" envDefault:"Europe/Istanbul"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	cfg.NATSURL = strings.TrimSpace(cfg.NATSURL)
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)

	if cfg.OutboxBatchSize <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", cfg.OutboxBatchSize)
	}
	if cfg.OutboxPollInterval <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", cfg.OutboxPollInterval)
	}
	cfg.MinutesTimezone = strings.TrimSpace(cfg.MinutesTimezone)
	if _, err := time.LoadLocation(cfg.MinutesTimezone); err != nil {
		return Config{}, fmt.Errorf("MINUTES_TIMEZONE: %w", err)
	}
	return cfg, nil
}

// MinutesLocation is the zone meeting minutes are rendered in.
func (c Config) MinutesLocation() *time.Location {
	loc, err := time.LoadLocation(c.MinutesTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisEnabled reports whether a redis idempotency store is configured.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// NATSEnabled reports whether events are relayed to an external NATS server.
func (c Config) NATSEnabled() bool {
	return strings.TrimSpace(c.NATSURL) != ""
}
