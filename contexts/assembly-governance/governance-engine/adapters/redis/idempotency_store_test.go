package redisadapter

import (
	"context"
	"testing"
	"time"

	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func setupTestStore(t *testing.T, now time.Time) (*miniredis.Miniredis, *IdempotencyStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewIdempotencyStore(client, "", fixedClock{now: now}, nil)
}

func TestIdempotencyStorePutThenGet(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	mr, store := setupTestStore(t, now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.IdempotencyRecord{
		Key:         "key-1",
		RequestHash: "hash-1",
		ResourceID:  "meeting-1",
		ExpiresAt:   now.Add(time.Hour),
	}))

	record, found, err := store.Get(ctx, "key-1", now)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "meeting-1", record.ResourceID)
	assert.Equal(t, "hash-1", record.RequestHash)
	assert.Equal(t, time.Hour, mr.TTL(defaultKeyPrefix+"key-1"))
}

func TestIdempotencyStoreRejectsDifferentPayloadForSameKey(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	_, store := setupTestStore(t, now)
	ctx := context.Background()
	record := ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-1", ResourceID: "meeting-1", ExpiresAt: now.Add(time.Hour)}

	require.NoError(t, store.Put(ctx, record))
	require.NoError(t, store.Put(ctx, record))

	record.RequestHash = "hash-2"
	assert.ErrorIs(t, store.Put(ctx, record), domainerrors.ErrIdempotencyConflict)
}

func TestIdempotencyStoreTreatsExpiredRecordAsMissing(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	mr, store := setupTestStore(t, now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.IdempotencyRecord{
		Key:         "key-1",
		RequestHash: "hash-1",
		ResourceID:  "meeting-1",
		ExpiresAt:   now.Add(time.Minute),
	}))

	_, found, err := store.Get(ctx, "key-1", now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists(defaultKeyPrefix+"key-1"))
}

func TestIdempotencyStoreMissingKey(t *testing.T) {
	_, store := setupTestStore(t, time.Now().UTC())

	_, found, err := store.Get(context.Background(), "absent", time.Now().UTC())

	require.NoError(t, err)
	assert.False(t, found)
}
