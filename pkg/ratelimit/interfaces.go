package ratelimit

import (
	"time"
)

// RateLimiter decides whether a client may call an endpoint right now. The
// endpoint is "METHOD:/normalized/path".
type RateLimiter interface {
	Allow(clientID string, endpoint string) (bool, time.Duration, error)
	Limit(clientID string, endpoint string) RateLimit
	GetStats() RateLimiterStats
}

type RateLimit struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	BurstSize         int           `json:"burstSize"`
	WindowSize        time.Duration `json:"windowSize"`
}

type RateLimiterStats struct {
	TotalRequests   int64   `json:"totalRequests"`
	BlockedRequests int64   `json:"blockedRequests"`
	BlockedPercent  float64 `json:"blockedPercent"`
	ActiveClients   int     `json:"activeClients"`
}

// TokenBucket is the per client and endpoint state of the in-memory limiter.
type TokenBucket struct {
	ClientID   string    `json:"clientId"`
	Capacity   int       `json:"capacity"`
	Tokens     float64   `json:"tokens"`
	RefillRate int       `json:"refillRate"`
	LastRefill time.Time `json:"lastRefill"`
	LastSeen   time.Time `json:"lastSeen"`
}
