package services

import (
	"context"
	"time"

	"fleet-dashboard/internal/repository"
	"fleet-dashboard/pkg/cache"

	"github.com/sirupsen/logrus"
)

// CacheTagFleet tags every cached view derived from the store.
const CacheTagFleet = "fleet"

const invalidationTimeout = 2 * time.Second

// versionedEntry stamps a cached view with the store version it was built
// from. An entry from any other version is treated as a miss.
type versionedEntry[T any] struct {
	Version uint64 `json:"version"`
	Value   T      `json:"value"`
}

// readThrough serves key from the cache when possible and otherwise builds,
// stores and tags a fresh value. Cache failures only cost the cache.
//
// The version is read before build, so a value built while a mutation lands
// carries the older version. If its Set arrives after the invalidation, the
// next read still rejects it.
func readThrough[T any](ctx context.Context, cm cache.CacheManager, key string, ttl time.Duration, log logrus.FieldLogger, version func() uint64, build func() T) T {
	if cm == nil {
		return build()
	}

	current := version()
	var cached versionedEntry[T]
	found, err := cm.Get(ctx, key, &cached)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if found && cached.Version == current {
		return cached.Value
	}

	value := build()
	entry := versionedEntry[T]{Version: current, Value: value}
	if err := cm.Set(ctx, key, entry, ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to cache value")
		return value
	}
	if err := cm.TagKey(ctx, key, CacheTagFleet); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to tag cached value")
	}
	return value
}

// CacheInvalidator returns a store observer that drops every cached view
// after a change.
func CacheInvalidator(cm cache.CacheManager, log logrus.FieldLogger) repository.Observer {
	return func(event repository.ChangeEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
		defer cancel()

		if err := cm.InvalidateByTag(ctx, CacheTagFleet); err != nil {
			log.WithError(err).WithField("kind", event.Kind).Warn("Failed to invalidate cached views")
		}
	}
}
