package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// redisKeyPrefix namespaces all dashboard cache keys in Redis.
	redisKeyPrefix = "findash:cache:"

	// redisStaleGrace is how long an entry stays physically resident in
	// Redis past its logical expiry, keeping GetStale viable. Plays the
	// role of the memory store's sweep interval.
	redisStaleGrace = 24 * time.Hour

	redisOpTimeout = 5 * time.Second
)

// redisEntry wraps a cached value with its logical expiry so that expired
// data stays readable on the stale path while Redis still holds the key.
type redisEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// RedisStore implements Store on Redis for multi-instance deployments.
// Physical key TTL is the logical TTL plus a stale grace window; Redis
// itself plays the role of the eviction sweep.
type RedisStore struct {
	client     *redis.Client
	defaultTTL time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewRedisStore connects to Redis at the given URL and verifies the
// connection before returning.
func NewRedisStore(url string, defaultTTL time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	slog.Info("redis cache connected", "default_ttl", defaultTTL)

	return &RedisStore{client: client, defaultTTL: defaultTTL}, nil
}

func (s *RedisStore) load(key string) (*redisEntry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Error("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}

	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Error("redis entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &e, true
}

// Get returns the value only while the entry is logically unexpired.
func (s *RedisStore) Get(key string) ([]byte, bool) {
	e, ok := s.load(key)
	if !ok || time.Now().After(e.ExpiresAt) {
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return e.Value, true
}

// GetStale returns the value regardless of logical expiry, as long as the
// key is still physically resident in Redis.
func (s *RedisStore) GetStale(key string) ([]byte, bool) {
	e, ok := s.load(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Set stores value under key. Write failures are logged and swallowed so a
// cache outage never breaks the primary fetch path.
func (s *RedisStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	data, err := json.Marshal(redisEntry{Value: value, ExpiresAt: time.Now().Add(ttl)})
	if err != nil {
		slog.Error("redis entry marshal failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, redisKeyPrefix+key, data, ttl+redisStaleGrace).Err(); err != nil {
		slog.Error("redis set failed", "key", key, "error", err)
	}
}

// Has reports whether a logically unexpired entry exists for key.
func (s *RedisStore) Has(key string) bool {
	e, ok := s.load(key)
	return ok && time.Now().Before(e.ExpiresAt)
}

// Delete removes the entry, reporting whether one was resident.
func (s *RedisStore) Delete(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := s.client.Del(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		slog.Error("redis delete failed", "key", key, "error", err)
		return false
	}
	return n > 0
}

// Invalidate removes every resident key containing pattern.
func (s *RedisStore) Invalidate(pattern string) {
	if pattern == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*"+pattern+"*", 0).Iterator()
	var removed int
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Error("redis delete failed", "key", iter.Val(), "error", err)
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		slog.Error("redis scan failed", "pattern", pattern, "error", err)
	}

	slog.Info("cache invalidated", "pattern", pattern, "removed", removed)
}

// Clear removes all dashboard cache keys.
func (s *RedisStore) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Error("redis delete failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Error("redis scan failed", "error", err)
	}

	slog.Info("cache cleared")
}

// ExpiryTime returns the logical expiry of key, or the zero time.
func (s *RedisStore) ExpiryTime(key string) time.Time {
	if e, ok := s.load(key); ok {
		return e.ExpiresAt
	}
	return time.Time{}
}

// Stats returns current cache counters. Keys counts physically resident
// entries, which may include logically expired ones awaiting eviction.
func (s *RedisStore) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var keys int
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys++
	}

	return Stats{
		Keys:   keys,
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
