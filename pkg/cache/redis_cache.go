package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientProvider hands out the current go-redis client. The reconnecting
// wrapper in pkg/redis satisfies it.
type ClientProvider interface {
	GetClient() *redis.Client
}

// StaticClient adapts a plain go-redis client to ClientProvider.
type StaticClient struct {
	Client *redis.Client
}

func (s StaticClient) GetClient() *redis.Client { return s.Client }

// RedisCacheManager implements CacheManager using Redis
type RedisCacheManager struct {
	provider ClientProvider
	config   CacheConfig
	stats    *cacheStats
}

type cacheStats struct {
	mu            sync.RWMutex
	totalHits     int64
	totalMisses   int64
	evictionCount int64
}

func NewRedisCacheManager(provider ClientProvider, config CacheConfig) *RedisCacheManager {
	return &RedisCacheManager{
		provider: provider,
		config:   config,
		stats:    &cacheStats{},
	}
}

func (r *RedisCacheManager) client() (*redis.Client, error) {
	client := r.provider.GetClient()
	if client == nil {
		return nil, errors.New("redis client not initialized")
	}
	return client, nil
}

func (r *RedisCacheManager) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	client, err := r.client()
	if err != nil {
		return false, err
	}

	data, err := client.Get(ctx, r.buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.recordMiss()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}

	r.recordHit()
	return true, nil
}

func (r *RedisCacheManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return client.Set(ctx, r.buildKey(key), data, ttl).Err()
}

// Delete removes a key and its tag associations
func (r *RedisCacheManager) Delete(ctx context.Context, key string) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	cacheKey := r.buildKey(key)
	tagsKey := r.buildTagKey("key_tags", cacheKey)
	tags, err := client.SMembers(ctx, tagsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read tags of %s: %w", key, err)
	}

	pipe := client.TxPipeline()
	for _, tag := range tags {
		pipe.SRem(ctx, r.buildTagKey("tag_keys", tag), cacheKey)
	}
	pipe.Del(ctx, tagsKey, cacheKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisCacheManager) TagKey(ctx context.Context, key string, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	client, err := r.client()
	if err != nil {
		return err
	}

	cacheKey := r.buildKey(key)
	ttl := r.config.tagTTL()
	members := make([]interface{}, len(tags))
	for i, tag := range tags {
		members[i] = tag
	}

	pipe := client.TxPipeline()
	tagsKey := r.buildTagKey("key_tags", cacheKey)
	pipe.SAdd(ctx, tagsKey, members...)
	pipe.Expire(ctx, tagsKey, ttl)
	for _, tag := range tags {
		keysKey := r.buildTagKey("tag_keys", tag)
		pipe.SAdd(ctx, keysKey, cacheKey)
		pipe.Expire(ctx, keysKey, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateByTag removes every key carrying the tag
func (r *RedisCacheManager) InvalidateByTag(ctx context.Context, tag string) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	keysKey := r.buildTagKey("tag_keys", tag)
	keys, err := client.SMembers(ctx, keysKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get keys for tag %s: %w", tag, err)
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := client.TxPipeline()
	for _, cacheKey := range keys {
		pipe.Del(ctx, cacheKey, r.buildTagKey("key_tags", cacheKey))
	}
	pipe.Del(ctx, keysKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate keys for tag %s: %w", tag, err)
	}

	r.stats.mu.Lock()
	r.stats.evictionCount += int64(len(keys))
	r.stats.mu.Unlock()
	return nil
}

func (r *RedisCacheManager) GetCacheStats(ctx context.Context) CacheStats {
	r.stats.mu.RLock()
	totalHits := r.stats.totalHits
	totalMisses := r.stats.totalMisses
	evictionCount := r.stats.evictionCount
	r.stats.mu.RUnlock()

	stats := CacheStats{
		EvictionCount: int(evictionCount),
		TotalHits:     totalHits,
		TotalMisses:   totalMisses,
	}
	if total := totalHits + totalMisses; total > 0 {
		stats.HitRate = float64(totalHits) / float64(total)
		stats.MissRate = float64(totalMisses) / float64(total)
	}

	client, err := r.client()
	if err != nil {
		return stats
	}
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		stats.MemoryUsage = parseUsedMemory(info)
	}

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, r.config.KeyPrefix+"*", 100).Result()
		if err != nil {
			break
		}
		for _, k := range keys {
			if !strings.HasPrefix(k, r.config.TagPrefix) {
				stats.KeyCount++
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	return stats
}

func (r *RedisCacheManager) HealthCheck(ctx context.Context) error {
	client, err := r.client()
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

func (r *RedisCacheManager) buildKey(identifier string) string {
	return r.config.KeyPrefix + identifier
}

func (r *RedisCacheManager) buildTagKey(keyType, identifier string) string {
	return fmt.Sprintf("%s%s:%s", r.config.TagPrefix, keyType, identifier)
}

func (r *RedisCacheManager) recordHit() {
	r.stats.mu.Lock()
	r.stats.totalHits++
	r.stats.mu.Unlock()
}

func (r *RedisCacheManager) recordMiss() {
	r.stats.mu.Lock()
	r.stats.totalMisses++
	r.stats.mu.Unlock()
}

func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "used_memory:") {
			if v, err := strconv.ParseInt(strings.TrimPrefix(line, "used_memory:"), 10, 64); err == nil {
				return v
			}
		}
	}
	return 0
}
