package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMongo  = "mongo"
	SessionStoreSQLite = "sqlite"
	SessionStoreMemory = "memory"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	JWTSecret      string
	JWTExpiry      time.Duration
	AuthDelay      time.Duration

	LogLevel  string
	LogFormat string

	SessionStore string
	SessionKey   string
	SessionFile  string
	SQLitePath   string

	MongoURI      string
	MongoDatabase string

	Redis RedisConfig

	CacheEnabled         bool
	RateLimitEnabled     bool
	StatsRefreshSchedule string
}

type RedisConfig struct {
	URL                string
	Host               string
	Port               string
	Password           string
	DB                 int
	PoolSize           int
	MinIdleConns       int
	MaxRetries         int
	RetryDelay         time.Duration
	DialTimeout        time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	PoolTimeout        time.Duration
	IdleTimeout        time.Duration
	IdleCheckFrequency time.Duration
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("No .env file loaded, using environment only")
	}

	allowedOrigins := getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: origins,
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiry:      getDuration("JWT_EXPIRY", 24*time.Hour),
		AuthDelay:      getDuration("AUTH_DELAY", time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SessionStore: strings.ToLower(getEnv("SESSION_STORE", SessionStoreFile)),
		SessionKey:   getEnv("SESSION_KEY", "carManagementUser"),
		SessionFile:  getEnv("SESSION_FILE", "data/client_storage.json"),
		SQLitePath:   getEnv("SQLITE_PATH", "data/client_storage.db"),

		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "fleet_dashboard"),

		Redis: RedisConfig{
			URL:                os.Getenv("REDIS_URL"),
			Host:               getEnv("REDIS_HOST", "localhost"),
			Port:               getEnv("REDIS_PORT", "6379"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 getInt("REDIS_DB", 0),
			PoolSize:           getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:       getInt("REDIS_MIN_IDLE_CONNS", 2),
			MaxRetries:         getInt("REDIS_MAX_RETRIES", 3),
			RetryDelay:         getDuration("REDIS_RETRY_DELAY", time.Second),
			DialTimeout:        getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:        getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:       getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:        getDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:        getDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			IdleCheckFrequency: getDuration("REDIS_IDLE_CHECK_FREQUENCY", time.Minute),
		},

		CacheEnabled:         getBool("CACHE_ENABLED", false),
		RateLimitEnabled:     getBool("RATE_LIMIT_ENABLED", true),
		StatsRefreshSchedule: getEnv("STATS_REFRESH_SCHEDULE", "0 0 0 * * *"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.SessionStore {
	case SessionStoreFile, SessionStoreRedis, SessionStoreMongo, SessionStoreSQLite, SessionStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}
	if c.SessionStore == SessionStoreMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required when SESSION_STORE=mongo"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.AuthDelay < 0 {
		errs = append(errs, errors.New("AUTH_DELAY must not be negative"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	return errors.Join(errs...)
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.CacheEnabled || c.SessionStore == SessionStoreRedis
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid integer %q, using %d", value, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid boolean %q, using %t", value, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return d
}
