package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"github.com/redis/go-redis/v9"
)

const (
	redisNamespace   = "githours"
	redisDialTimeout = 5 * time.Second
)

// redisCommander is the subset of the go-redis client the cache needs.
type redisCommander interface {
	Ping(ctx context.Context) *redis.StatusCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCacheStore keeps each cached commit list in a Redis hash and tracks
// the hashes in an index set so status and clear never need SCAN.
type RedisCacheStore struct {
	client    redisCommander
	closeFn   func() error
	tableName string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the redis:// or rediss:// URL in connStr.
func NewRedisCacheStore(tableName, connStr string) (*RedisCacheStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w. Check connection format: redis://[:password@]host:port/db", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return newRedisCacheStore(client, client.Close, tableName), nil
}

func newRedisCacheStore(client redisCommander, closeFn func() error, tableName string) *RedisCacheStore {
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return &RedisCacheStore{client: client, closeFn: closeFn, tableName: tableName}
}

func (rs *RedisCacheStore) entryKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", redisNamespace, rs.tableName, key)
}

func (rs *RedisCacheStore) indexKey() string {
	return fmt.Sprintf("%s:%s:index", redisNamespace, rs.tableName)
}

// Get retrieves a value by key. A missing key returns sql.ErrNoRows to match
// the SQL stores.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx := context.Background()
	fields, err := rs.client.HGetAll(ctx, rs.entryKey(key)).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read cache hash: %w", err)
	}
	if len(fields) == 0 {
		return nil, 0, 0, sql.ErrNoRows
	}

	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("parse cache version: %w", err)
	}
	ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("parse cache timestamp: %w", err)
	}
	return []byte(fields["value"]), version, ts, nil
}

// Set inserts or replaces a key/value pair.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx := context.Background()
	fields := map[string]any{
		"value":     string(value),
		"version":   strconv.Itoa(version),
		"timestamp": strconv.FormatInt(timestamp, 10),
	}
	if err := rs.client.HSet(ctx, rs.entryKey(key), fields).Err(); err != nil {
		return fmt.Errorf("write cache hash: %w", err)
	}
	if err := rs.client.SAdd(ctx, rs.indexKey(), key).Err(); err != nil {
		return fmt.Errorf("index cache entry: %w", err)
	}
	return nil
}

// Clear deletes every indexed entry and the index itself.
func (rs *RedisCacheStore) Clear() error {
	ctx := context.Background()
	members, err := rs.client.SMembers(ctx, rs.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("list cache entries: %w", err)
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, rs.entryKey(m))
	}
	keys = append(keys, rs.indexKey())
	if err := rs.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache entries: %w", err)
	}
	return nil
}

// GetStatus reports entry count, age range and the approximate payload size.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend)}
	ctx := context.Background()

	if err := rs.client.Ping(ctx).Err(); err != nil {
		return status, nil
	}
	status.Connected = true

	members, err := rs.client.SMembers(ctx, rs.indexKey()).Result()
	if err != nil {
		return status, fmt.Errorf("list cache entries: %w", err)
	}

	var oldest, last int64
	for _, m := range members {
		fields, err := rs.client.HGetAll(ctx, rs.entryKey(m)).Result()
		if err != nil {
			return status, fmt.Errorf("read cache hash: %w", err)
		}
		if len(fields) == 0 {
			continue // expired or deleted behind our back
		}
		ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
		if err != nil {
			continue
		}
		status.TotalEntries++
		status.TableSizeBytes += int64(len(fields["value"]))
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		if ts > last {
			last = ts
		}
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(last, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close closes the underlying Redis client.
func (rs *RedisCacheStore) Close() error {
	return rs.closeFn()
}
