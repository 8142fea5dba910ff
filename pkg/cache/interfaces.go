package cache

import (
	"context"
	"time"
)

// CacheManager stores JSON-encoded values with tag based invalidation.
type CacheManager interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// TagKey associates tags with a key so InvalidateByTag can drop it.
	TagKey(ctx context.Context, key string, tags ...string) error
	InvalidateByTag(ctx context.Context, tag string) error

	GetCacheStats(ctx context.Context) CacheStats
	HealthCheck(ctx context.Context) error
}

// CacheStats provides cache performance metrics
type CacheStats struct {
	HitRate       float64 `json:"hitRate"`
	MissRate      float64 `json:"missRate"`
	MemoryUsage   int64   `json:"memoryUsage"`
	KeyCount      int     `json:"keyCount"`
	EvictionCount int     `json:"evictionCount"`
	TotalHits     int64   `json:"totalHits"`
	TotalMisses   int64   `json:"totalMisses"`
}
