package cache

// NewCacheManager creates a Redis backed cache manager
func NewCacheManager(provider ClientProvider, config CacheConfig) CacheManager {
	return NewRedisCacheManager(provider, config)
}

// NewDefaultCacheManager creates a cache manager with default configuration
func NewDefaultCacheManager(provider ClientProvider) CacheManager {
	return NewRedisCacheManager(provider, DefaultCacheConfig())
}
