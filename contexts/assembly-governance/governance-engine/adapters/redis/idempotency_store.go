package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "governance:idempotency:"

type idempotencyValue struct {
	RequestHash string    `json:"request_hash"`
	ResourceID  string    `json:"resource_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IdempotencyStore keeps idempotency records in Redis with a TTL matching
// the record expiry. First writer wins through SETNX.
type IdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	clock     ports.Clock
	logger    *slog.Logger
}

func NewIdempotencyStore(client *redis.Client, keyPrefix string, clock ports.Clock, logger *slog.Logger) *IdempotencyStore {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
		clock:     clock,
		logger:    logger,
	}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	key = strings.TrimSpace(key)
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, s.logError("governance_redis_idempotency_get_failed", err, key)
	}
	var value idempotencyValue
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return ports.IdempotencyRecord{}, false, s.logError("governance_redis_idempotency_decode_failed", err, key)
	}
	if !value.ExpiresAt.After(now.UTC()) {
		if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
			return ports.IdempotencyRecord{}, false, s.logError("governance_redis_idempotency_expire_failed", err, key)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         key,
		RequestHash: value.RequestHash,
		ResourceID:  value.ResourceID,
		ExpiresAt:   value.ExpiresAt.UTC(),
	}, true, nil
}

func (s *IdempotencyStore) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	key := strings.TrimSpace(record.Key)
	value := idempotencyValue{
		RequestHash: strings.TrimSpace(record.RequestHash),
		ResourceID:  strings.TrimSpace(record.ResourceID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	ttl := value.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	stored, err := s.client.SetNX(ctx, s.keyPrefix+key, payload, ttl).Result()
	if err != nil {
		return s.logError("governance_redis_idempotency_put_failed", err, key)
	}
	if stored {
		return nil
	}
	existing, found, err := s.Get(ctx, key, s.now())
	if err != nil {
		return err
	}
	if found && (existing.RequestHash != value.RequestHash || existing.ResourceID != value.ResourceID) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (s *IdempotencyStore) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now().UTC()
}

func (s *IdempotencyStore) logError(event string, err error, key string) error {
	s.logger.Error("governance idempotency cache operation failed",
		"event", event,
		"module", "assembly-governance/governance-engine",
		"layer", "adapter",
		"idempotency_key", key,
		"error", err.Error(),
	)
	return err
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)
