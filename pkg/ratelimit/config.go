package ratelimit

import (
	"strings"
	"time"
)

const (
	CategoryAuth        = "auth"
	CategoryAuthSession = "auth_session"
	CategoryRead        = "read"
	CategoryWrite       = "write"
	CategoryReports     = "reports"
	CategoryRefresh     = "refresh"
	CategoryHealth      = "health"
	CategoryDefault     = "default"
)

type Config struct {
	DefaultLimits map[string]RateLimit `json:"defaultLimits"`

	RedisKeyPrefix string `json:"redisKeyPrefix"`

	// CleanupInterval is how often idle in-memory buckets are dropped.
	CleanupInterval time.Duration `json:"cleanupInterval"`
	IdleTimeout     time.Duration `json:"idleTimeout"`

	Enabled bool `json:"enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultLimits: map[string]RateLimit{
			// login and register carry a simulated delay, so keep them tight
			CategoryAuth:        {RequestsPerMinute: 10, BurstSize: 5, WindowSize: time.Minute},
			CategoryAuthSession: {RequestsPerMinute: 60, BurstSize: 20, WindowSize: time.Minute},

			CategoryRead:    {RequestsPerMinute: 120, BurstSize: 30, WindowSize: time.Minute},
			CategoryWrite:   {RequestsPerMinute: 30, BurstSize: 10, WindowSize: time.Minute},
			CategoryReports: {RequestsPerMinute: 30, BurstSize: 10, WindowSize: time.Minute},
			CategoryRefresh: {RequestsPerMinute: 6, BurstSize: 2, WindowSize: time.Minute},

			CategoryHealth: {RequestsPerMinute: 1000, BurstSize: 100, WindowSize: time.Minute},

			CategoryDefault: {RequestsPerMinute: 60, BurstSize: 15, WindowSize: time.Minute},
		},
		RedisKeyPrefix:  "ratelimit:",
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Enabled:         true,
	}
}

type endpointRule struct {
	pattern  string
	category string
}

// Rules are checked in order; the first match wins.
var endpointRules = []endpointRule{
	{"POST:/api/v1/auth/login", CategoryAuth},
	{"POST:/api/v1/auth/register", CategoryAuth},
	{"POST:/api/v1/auth/*", CategoryAuthSession},
	{"GET:/api/v1/auth/*", CategoryAuthSession},

	{"GET:/api/v1/health", CategoryHealth},
	{"GET:/api/v1/reports", CategoryReports},
	{"POST:/api/v1/dashboard/refresh", CategoryRefresh},

	{"GET:/api/v1/*", CategoryRead},
	{"POST:/api/v1/*", CategoryWrite},
	{"PUT:/api/v1/*", CategoryWrite},
	{"DELETE:/api/v1/*", CategoryWrite},
}

// Category maps an endpoint of the form "METHOD:/path" to its limit category.
func Category(endpoint string) string {
	for _, rule := range endpointRules {
		if matchesPattern(endpoint, rule.pattern) {
			return rule.category
		}
	}
	return CategoryDefault
}

func matchesPattern(key, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return key == pattern
}

// limitFor resolves the limit of a category, falling back to the default one.
func (c *Config) limitFor(category string) RateLimit {
	if limit, exists := c.DefaultLimits[category]; exists {
		return limit
	}
	if limit, exists := c.DefaultLimits[CategoryDefault]; exists {
		return limit
	}
	return RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         15,
		WindowSize:        time.Minute,
	}
}
