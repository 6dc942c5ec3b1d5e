package idempotency

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, nil, time.Hour), client
}

func seedCachedRecord(t *testing.T, client *redis.Client, rec Record) {
	t.Helper()

	payload, err := json.Marshal(cacheEnvelope{
		Key:         rec.Key,
		Hash:        rec.RequestHash,
		Status:      rec.Status,
		Body:        rec.Body,
		ContentType: rec.ContentType,
	})
	require.NoError(t, err)
	require.NoError(t, client.Set(context.Background(), redisKey(rec.Key), payload, time.Hour).Err())
}

func TestLookupServedFromCache(t *testing.T) {
	store, client := newCacheStore(t)

	seeded := Record{
		Key:         "key-1",
		RequestHash: "hash-1",
		Status:      201,
		Body:        []byte(`{"ok":true}`),
		ContentType: "application/json",
	}
	seedCachedRecord(t, client, seeded)

	rec, err := store.Lookup(context.Background(), "key-1", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "redis", rec.ServedBy)
	assert.Equal(t, seeded.Status, rec.Status)
	assert.Equal(t, seeded.Body, rec.Body)
	assert.Equal(t, seeded.ContentType, rec.ContentType)
}

func TestLookupCacheHashMismatch(t *testing.T) {
	store, client := newCacheStore(t)

	seedCachedRecord(t, client, Record{
		Key:         "key-1",
		RequestHash: "hash-1",
		Status:      200,
	})

	// Same key, different request body: the cached response must not leak.
	_, err := store.Lookup(context.Background(), "key-1", "other-hash")
	require.ErrorIs(t, err, ErrHashMismatch)
}
