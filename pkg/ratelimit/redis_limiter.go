package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientProvider hands out the current go-redis client.
type ClientProvider interface {
	GetClient() *redis.Client
}

// fixedWindowScript counts requests in a window that starts with the first
// request and returns {allowed, milliseconds until the window resets}.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local burst_size = tonumber(ARGV[1])
local window_size = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local count = tonumber(redis.call('HGET', key, 'count')) or 0
local window_start = tonumber(redis.call('HGET', key, 'window_start')) or now

if now - window_start >= window_size then
	count = 0
	window_start = now
end

local allowed = count < burst_size
if allowed then
	count = count + 1
end

local reset_ms = 0
if not allowed then
	reset_ms = (window_start + window_size) - now
end

redis.call('HSET', key, 'count', count, 'window_start', window_start)
redis.call('PEXPIRE', key, window_size)

if allowed then
	return {1, reset_ms}
end
return {0, reset_ms}
`)

// RedisRateLimiter shares its counters across server instances through
// Redis. Its stats cover this instance only and leave ActiveClients unset.
type RedisRateLimiter struct {
	provider ClientProvider
	config   *Config
	stats    RateLimiterStats
	mu       sync.RWMutex
	now      func() time.Time
}

func NewRedisRateLimiter(provider ClientProvider, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &RedisRateLimiter{
		provider: provider,
		config:   config,
		now:      time.Now,
	}
}

func (r *RedisRateLimiter) client() (*redis.Client, error) {
	client := r.provider.GetClient()
	if client == nil {
		return nil, errors.New("redis client not initialized")
	}
	return client, nil
}

func (r *RedisRateLimiter) Allow(clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	client, err := r.client()
	if err != nil {
		return false, 0, err
	}

	limit := r.Limit(clientID, endpoint)
	key := fmt.Sprintf("%s%s:%s", r.config.RedisKeyPrefix, clientID, endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := fixedWindowScript.Run(ctx, client, []string{key},
		limit.BurstSize,
		limit.WindowSize.Milliseconds(),
		r.now().UnixMilli()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("unexpected script result %v", result)
	}

	r.mu.Lock()
	r.stats.TotalRequests++
	if result[0] != 1 {
		r.stats.BlockedRequests++
	}
	r.mu.Unlock()

	if result[0] != 1 {
		return false, time.Duration(result[1]) * time.Millisecond, nil
	}
	return true, 0, nil
}

func (r *RedisRateLimiter) Limit(clientID string, endpoint string) RateLimit {
	return r.config.limitFor(Category(endpoint))
}

func (r *RedisRateLimiter) GetStats() RateLimiterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := r.stats
	if stats.TotalRequests > 0 {
		stats.BlockedPercent = float64(stats.BlockedRequests) / float64(stats.TotalRequests) * 100
	}
	return stats
}
