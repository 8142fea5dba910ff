package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// MemoryRateLimiter is a token bucket limiter keyed by client and endpoint.
type MemoryRateLimiter struct {
	config *Config
	stats  RateLimiterStats
	tokens map[string]*TokenBucket
	mu     sync.Mutex
	now    func() time.Time
	cancel context.CancelFunc
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	limiter := &MemoryRateLimiter{
		config: config,
		tokens: make(map[string]*TokenBucket),
		now:    time.Now,
		cancel: cancel,
	}

	if config.CleanupInterval > 0 {
		go limiter.cleanupLoop(ctx)
	}

	return limiter
}

func (r *MemoryRateLimiter) Allow(clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalRequests++
	limit := r.Limit(clientID, endpoint)
	key := fmt.Sprintf("%s:%s", clientID, endpoint)
	now := r.now()

	bucket := r.bucketLocked(clientID, key, limit, now)
	elapsed := now.Sub(bucket.LastRefill)
	if elapsed > 0 {
		bucket.Tokens = math.Min(float64(bucket.Capacity), bucket.Tokens+float64(limit.RequestsPerMinute)*elapsed.Minutes())
		bucket.LastRefill = now
	}
	bucket.LastSeen = now

	if bucket.Tokens >= 1 {
		bucket.Tokens--
		return true, 0, nil
	}

	r.stats.BlockedRequests++
	if limit.RequestsPerMinute <= 0 {
		return false, limit.WindowSize, nil
	}
	missing := 1 - bucket.Tokens
	wait := time.Duration(missing * float64(time.Minute) / float64(limit.RequestsPerMinute))
	return false, max(wait, time.Millisecond), nil
}

// Limit is the configured limit for the endpoint's category. It does not
// vary by client.
func (r *MemoryRateLimiter) Limit(clientID string, endpoint string) RateLimit {
	return r.config.limitFor(Category(endpoint))
}

func (r *MemoryRateLimiter) bucketLocked(clientID, key string, limit RateLimit, now time.Time) *TokenBucket {
	if bucket, exists := r.tokens[key]; exists {
		return bucket
	}

	bucket := &TokenBucket{
		ClientID:   clientID,
		Capacity:   limit.BurstSize,
		Tokens:     float64(limit.BurstSize),
		RefillRate: limit.RequestsPerMinute,
		LastRefill: now,
		LastSeen:   now,
	}
	r.tokens[key] = bucket
	return bucket
}

func (r *MemoryRateLimiter) GetStats() RateLimiterStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.stats
	clients := make(map[string]struct{})
	for _, bucket := range r.tokens {
		clients[bucket.ClientID] = struct{}{}
	}
	stats.ActiveClients = len(clients)
	if stats.TotalRequests > 0 {
		stats.BlockedPercent = float64(stats.BlockedRequests) / float64(stats.TotalRequests) * 100
	}
	return stats
}

// Close stops the cleanup loop.
func (r *MemoryRateLimiter) Close() {
	r.cancel()
}

func (r *MemoryRateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

// cleanup drops buckets idle for longer than the configured timeout.
func (r *MemoryRateLimiter) cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for key, bucket := range r.tokens {
		if now.Sub(bucket.LastSeen) > r.config.IdleTimeout {
			delete(r.tokens, key)
			removed++
		}
	}
	return removed
}
