package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores computed shopping lists per user.
// Callers read Version before loading the data a list is built from and pass it
// to Set; a list computed before an Invalidate or Clear is then never stored.
type Cache interface {
	Get(ctx context.Context, userID string) (List, bool, error)
	Version(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, version string, list List) error
	Invalidate(ctx context.Context, userID string) error
	// Clear drops every cached list; used when shared data such as the catalog changes.
	Clear(ctx context.Context) error
}

const globalVersionKey = "shopping:version"

var errStaleVersion = errors.New("stale cache version")

// RedisCache keeps lists in redis for a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redis and checks the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached list, reporting a miss with false.
func (c *RedisCache) Get(ctx context.Context, userID string) (List, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}

	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	return list, true, nil
}

// Version returns the user's invalidation counters.
func (c *RedisCache) Version(ctx context.Context, userID string) (string, error) {
	return readVersion(ctx, c.client, userID)
}

// Set stores a list unless the user's version moved past version.
func (c *RedisCache) Set(ctx context.Context, userID, version string, list List) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(userID), data, c.ttl)
			return nil
		})
		return err
	}, globalVersionKey, versionKey(userID))

	if errors.Is(err, errStaleVersion) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Invalidate drops the user's cached list and bumps their version.
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Clear bumps the shared version and deletes every cached list.
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.client.Incr(ctx, globalVersionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache version: %w", err)
	}
	iter := c.client.Scan(ctx, 0, cacheKey("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func cacheKey(userID string) string {
	return fmt.Sprintf("shopping:list:%s", userID)
}

func versionKey(userID string) string {
	return fmt.Sprintf("shopping:version:%s", userID)
}

type mgetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func readVersion(ctx context.Context, c mgetter, userID string) (string, error) {
	vals, err := c.MGet(ctx, globalVersionKey, versionKey(userID)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read cache version: %w", err)
	}
	return formatVersion(vals[0], vals[1]), nil
}

// formatVersion joins the shared and per-user counters; missing counters read as 0.
func formatVersion(global, user any) string {
	counter := func(v any) any {
		if v == nil {
			return "0"
		}
		return v
	}
	return fmt.Sprintf("%v:%v", counter(global), counter(user))
}

// NoopCache never stores anything. Used when redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (List, bool, error) { return nil, false, nil }
func (NoopCache) Version(context.Context, string) (string, error) { return "", nil }
func (NoopCache) Set(context.Context, string, string, List) error { return nil }
func (NoopCache) Invalidate(context.Context, string) error        { return nil }
func (NoopCache) Clear(context.Context) error                     { return nil }
