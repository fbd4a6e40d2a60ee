package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"condogov/internal/platform/config"

	"github.com/go-redis/redis/v8"
)

// Redis wraps the shared redis client used for idempotency records.
type Redis struct {
	Client *redis.Client
}

func Connect(cfg config.Config) (*Redis, error) {
	if !cfg.RedisEnabled() {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{Client: client}, nil
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
