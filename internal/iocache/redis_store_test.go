package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/githours/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedisClient struct {
	mu      sync.Mutex
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	pingErr error
}

var _ redisCommander = &fakeRedisClient{} // Compile-time check

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (c *fakeRedisClient) Ping(_ context.Context) *redis.StatusCmd {
	if c.pingErr != nil {
		return redis.NewStatusResult("", c.pingErr)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (c *fakeRedisClient) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(values) != 1 {
		return redis.NewIntResult(0, fmt.Errorf("unsupported HSet argument format"))
	}
	fieldMap, ok := values[0].(map[string]any)
	if !ok {
		return redis.NewIntResult(0, fmt.Errorf("unsupported HSet value type"))
	}
	if _, exists := c.hashes[key]; !exists {
		c.hashes[key] = make(map[string]string)
	}
	changed := int64(0)
	for field, value := range fieldMap {
		if _, exists := c.hashes[key][field]; !exists {
			changed++
		}
		c.hashes[key][field] = fmt.Sprint(value)
	}
	return redis.NewIntResult(changed, nil)
}

func (c *fakeRedisClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	return redis.NewMapStringStringResult(maps.Clone(c.hashes[key]), nil)
}

func (c *fakeRedisClient) SAdd(_ context.Context, key string, members ...any) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sets[key]; !exists {
		c.sets[key] = make(map[string]struct{})
	}
	added := int64(0)
	for _, m := range members {
		member := fmt.Sprint(m)
		if _, exists := c.sets[key][member]; !exists {
			added++
		}
		c.sets[key][member] = struct{}{}
	}
	return redis.NewIntResult(added, nil)
}

func (c *fakeRedisClient) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	members := make([]string, 0, len(c.sets[key]))
	for m := range c.sets[key] {
		members = append(members, m)
	}
	return redis.NewStringSliceResult(members, nil)
}

func (c *fakeRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := int64(0)
	for _, key := range keys {
		if _, ok := c.hashes[key]; ok {
			delete(c.hashes, key)
			deleted++
		}
		if _, ok := c.sets[key]; ok {
			delete(c.sets, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func TestRedisCacheStore(t *testing.T) {
	client := newFakeRedisClient()
	closed := false
	store := newRedisCacheStore(client, func() error { closed = true; return nil }, commitTable)

	_, _, _, err := store.Get("absent")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	payload := []byte(`[{"id":"c1","message":"binary \u0000 safe"}]`)
	require.NoError(t, store.Set("k1", payload, 1, 1700000000))
	require.NoError(t, store.Set("k2", []byte("x"), 1, 1600000000))
	assert.Contains(t, client.hashes, "githours:commit_cache:k1")
	assert.Contains(t, client.sets["githours:commit_cache:index"], "k1")

	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, payload, value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "redis", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(1700000000, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(1600000000, 0), status.OldestEntryTime)
	assert.Equal(t, int64(len(payload)+1), status.TableSizeBytes)

	require.NoError(t, store.Clear())
	assert.Empty(t, client.hashes)
	assert.Empty(t, client.sets)

	require.NoError(t, store.Close())
	assert.True(t, closed)
}

func TestRedisCacheStoreStatusDisconnected(t *testing.T) {
	client := newFakeRedisClient()
	client.pingErr = errors.New("connection refused")
	store := newRedisCacheStore(client, nil, commitTable)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.RedisBackend), status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRedisCacheStoreCorruptEntry(t *testing.T) {
	client := newFakeRedisClient()
	client.hashes["githours:commit_cache:bad"] = map[string]string{"value": "v", "version": "x", "timestamp": "1"}
	store := newRedisCacheStore(client, nil, commitTable)

	_, _, _, err := store.Get("bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
}

func TestNewRedisCacheStoreBadURL(t *testing.T) {
	_, err := NewRedisCacheStore(commitTable, "http://localhost:6379")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
