// Package redis wraps a go-redis client with health tracking and
// background reconnection.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleet-dashboard/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	healthCheckInterval = 30 * time.Second
	maxReconnectBackoff = 30 * time.Second
)

type Client struct {
	client        *redis.Client
	config        config.RedisConfig
	log           logrus.FieldLogger
	mu            sync.RWMutex
	isConnected   bool
	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
}

type HealthStatus struct {
	IsConnected    bool          `json:"isConnected"`
	LastPing       time.Time     `json:"lastPing"`
	ResponseTime   time.Duration `json:"responseTime"`
	ConnectionInfo string        `json:"connectionInfo"`
	Error          string        `json:"error,omitempty"`
}

type ConnectionStats struct {
	Hits        uint32 `json:"hits"`
	Misses      uint32 `json:"misses"`
	Timeouts    uint32 `json:"timeouts"`
	TotalConns  uint32 `json:"totalConns"`
	IdleConns   uint32 `json:"idleConns"`
	StaleConns  uint32 `json:"staleConns"`
	IsConnected bool   `json:"isConnected"`
}

// NewClient dials Redis and starts the health and reconnect loops. A failed
// first ping is not fatal; the client keeps retrying in the background.
func NewClient(cfg config.RedisConfig, log logrus.FieldLogger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		config:        cfg,
		log:           log.WithField("component", "redis"),
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
	}

	c.connect()
	go c.healthCheckLoop()
	go c.reconnectLoop()

	return c
}

// Options translates the configuration into go-redis options. REDIS_URL wins
// over host and port when it parses.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	var opt *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     Address(cfg),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opt.PoolSize = cfg.PoolSize
	opt.MinIdleConns = cfg.MinIdleConns
	opt.MaxRetries = cfg.MaxRetries
	opt.MinRetryBackoff = cfg.RetryDelay
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	opt.PoolTimeout = cfg.PoolTimeout
	opt.ConnMaxIdleTime = cfg.IdleTimeout

	return opt, nil
}

func Address(cfg config.RedisConfig) string {
	return fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
}

func (c *Client) connect() {
	opt, err := Options(c.config)
	if err != nil {
		c.log.WithError(err).Warn("Falling back to host and port")
		fallback := c.config
		fallback.URL = ""
		opt, _ = Options(fallback)
	}

	client := redis.NewClient(opt)
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(ctx).Err()
	c.setConnected(err == nil)
	if err != nil {
		c.log.WithError(err).Warn("Redis connection test failed")
		return
	}
	c.log.WithField("addr", opt.Addr).Info("Redis connected")
}

// GetClient returns the current go-redis client. The pointer changes after
// a reconnect, so callers should not hold on to it for long.
func (c *Client) GetClient() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// Ping reports whether Redis answers right now.
func (c *Client) Ping(ctx context.Context) error {
	status := c.HealthCheck(ctx)
	if !status.IsConnected {
		return fmt.Errorf("redis unavailable: %s", status.Error)
	}
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	client := c.GetClient()

	status := HealthStatus{
		ConnectionInfo: Address(c.config),
	}
	if client == nil {
		status.Error = "redis client not initialized"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx).Err()
	status.ResponseTime = time.Since(start)
	status.LastPing = time.Now()

	if err != nil {
		status.Error = err.Error()
		c.setConnected(false)
		c.triggerReconnect()
		return status
	}

	c.setConnected(true)
	status.IsConnected = true
	return status
}

func (c *Client) setConnected(connected bool) {
	c.mu.Lock()
	c.isConnected = connected
	c.mu.Unlock()
}

func (c *Client) triggerReconnect() {
	select {
	case c.reconnectChan <- struct{}{}:
	default:
	}
}

func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if status := c.HealthCheck(c.ctx); !status.IsConnected {
				c.log.WithField("error", status.Error).Warn("Redis health check failed")
			}
		}
	}
}

// reconnectLoop redials with exponential backoff until a ping succeeds.
func (c *Client) reconnectLoop() {
	backoff := time.Second

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reconnectChan:
			if c.IsConnected() {
				continue
			}

			c.log.Info("Attempting to reconnect to Redis")
			if old := c.GetClient(); old != nil {
				old.Close()
			}
			c.connect()

			if c.IsConnected() {
				backoff = time.Second
				continue
			}

			c.log.WithField("backoff", backoff).Warn("Redis reconnection failed")
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxReconnectBackoff {
				backoff = maxReconnectBackoff
			}
			c.triggerReconnect()
		}
	}
}

func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Client) GetConnectionStats() ConnectionStats {
	client := c.GetClient()
	if client == nil {
		return ConnectionStats{}
	}

	stats := client.PoolStats()
	return ConnectionStats{
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Timeouts:    stats.Timeouts,
		TotalConns:  stats.TotalConns,
		IdleConns:   stats.IdleConns,
		StaleConns:  stats.StaleConns,
		IsConnected: c.IsConnected(),
	}
}
