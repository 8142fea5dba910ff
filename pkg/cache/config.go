package cache

import "time"

const (
	DataTypeReport    = "report"
	DataTypeDashboard = "dashboard"
)

// CacheConfig holds TTLs and key layout for the cache
type CacheConfig struct {
	ReportTTL    time.Duration `json:"reportTTL"`
	DashboardTTL time.Duration `json:"dashboardTTL"`
	DefaultTTL   time.Duration `json:"defaultTTL"`
	KeyPrefix    string        `json:"keyPrefix"`
	TagPrefix    string        `json:"tagPrefix"`
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ReportTTL:    5 * time.Minute,
		DashboardTTL: 30 * time.Second,
		DefaultTTL:   time.Minute,
		KeyPrefix:    "fleet:",
		TagPrefix:    "fleet:tag:",
	}
}

// GetTTLForDataType returns the TTL for a kind of cached payload
func (c CacheConfig) GetTTLForDataType(dataType string) time.Duration {
	switch dataType {
	case DataTypeReport:
		return c.ReportTTL
	case DataTypeDashboard:
		return c.DashboardTTL
	default:
		return c.DefaultTTL
	}
}

// tagTTL keeps tag sets alive longer than any value they point at.
func (c CacheConfig) tagTTL() time.Duration {
	longest := c.DefaultTTL
	for _, ttl := range []time.Duration{c.ReportTTL, c.DashboardTTL} {
		if ttl > longest {
			longest = ttl
		}
	}
	return 2 * longest
}
