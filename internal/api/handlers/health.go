package handlers

import (
	"context"
	"net/http"
	"time"

	"fleet-dashboard/internal/session"
	"fleet-dashboard/internal/websocket"
	"fleet-dashboard/pkg/cache"
	"fleet-dashboard/pkg/ratelimit"
	"fleet-dashboard/pkg/redis"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// RefreshScheduler reports when the statistics are recomputed next; zero
// while it is not running.
type RefreshScheduler interface {
	NextRun() time.Time
}

type HealthHandler struct {
	identityStore  session.IdentityStore
	hub            websocket.Broadcaster
	redisClient    *redis.Client
	cacheManager   cache.CacheManager
	rateLimiter    ratelimit.RateLimiter
	statsRefresher RefreshScheduler
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
}

func NewHealthHandler(identityStore session.IdentityStore, hub websocket.Broadcaster) *HealthHandler {
	return &HealthHandler{
		identityStore: identityStore,
		hub:           hub,
	}
}

// SetRedisClient adds the shared Redis connection to the report. Without it
// Redis is listed as disabled.
func (h *HealthHandler) SetRedisClient(client *redis.Client) {
	h.redisClient = client
}

func (h *HealthHandler) SetCacheManager(cacheManager cache.CacheManager) {
	h.cacheManager = cacheManager
}

func (h *HealthHandler) SetRateLimiter(limiter ratelimit.RateLimiter) {
	h.rateLimiter = limiter
}

func (h *HealthHandler) SetStatsRefresher(refresher RefreshScheduler) {
	h.statsRefresher = refresher
}

// HealthCheck answers 200 when the session store is readable and every
// enabled backend responds, 503 otherwise.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Timestamp: time.Now(),
		Services:  make(map[string]interface{}),
	}

	checks := map[string]map[string]interface{}{
		"sessionStore": h.checkSessionStore(ctx),
		"redis":        h.checkRedis(ctx),
		"cache":        h.checkCache(ctx),
		"websocket":    h.checkWebSocket(),
		"rateLimiter":  h.checkRateLimiter(),
		"statsRefresh": h.checkStatsRefresh(),
	}

	overallHealthy := true
	for name, status := range checks {
		response.Services[name] = status
		if !status["healthy"].(bool) {
			overallHealthy = false
		}
	}

	if overallHealthy {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

func (h *HealthHandler) checkSessionStore(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "session-store",
		"healthy": false,
	}

	if h.identityStore == nil {
		status["error"] = "Session store not initialized"
		return status
	}

	status["backend"] = h.identityStore.Name()
	if _, err := h.identityStore.Load(ctx); err != nil {
		status["error"] = err.Error()
		return status
	}

	status["healthy"] = true
	status["message"] = "Readable"
	return status
}

func (h *HealthHandler) checkRedis(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "redis",
		"healthy": true,
	}

	if h.redisClient == nil {
		status["message"] = "Disabled"
		return status
	}

	healthStatus := h.redisClient.HealthCheck(ctx)
	status["healthy"] = healthStatus.IsConnected
	status["connectionInfo"] = healthStatus.ConnectionInfo
	status["responseTime"] = healthStatus.ResponseTime.String()
	status["lastPing"] = healthStatus.LastPing
	status["connectionStats"] = h.redisClient.GetConnectionStats()
	if healthStatus.Error != "" {
		status["error"] = healthStatus.Error
	}

	return status
}

func (h *HealthHandler) checkCache(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "cache",
		"healthy": true,
	}

	if h.cacheManager == nil {
		status["message"] = "Disabled"
		return status
	}

	if err := h.cacheManager.HealthCheck(ctx); err != nil {
		status["healthy"] = false
		status["error"] = err.Error()
		return status
	}

	status["message"] = "Connected"
	status["stats"] = h.cacheManager.GetCacheStats(ctx)
	return status
}

func (h *HealthHandler) checkWebSocket() map[string]interface{} {
	status := map[string]interface{}{
		"service": "websocket",
		"healthy": h.hub != nil,
	}

	if h.hub == nil {
		status["error"] = "WebSocket hub not initialized"
		return status
	}

	status["connectedClients"] = h.hub.GetConnectedClients()
	status["stats"] = h.hub.GetClientStats()
	return status
}

func (h *HealthHandler) checkRateLimiter() map[string]interface{} {
	status := map[string]interface{}{
		"service": "rate-limiter",
		"healthy": true,
	}

	if h.rateLimiter == nil {
		status["message"] = "Disabled"
		return status
	}

	status["stats"] = h.rateLimiter.GetStats()
	return status
}

// checkStatsRefresh is unhealthy when the scheduler is configured but not
// running, since overdue counts would then stop following the calendar.
func (h *HealthHandler) checkStatsRefresh() map[string]interface{} {
	status := map[string]interface{}{
		"service": "stats-refresh",
		"healthy": true,
	}

	if h.statsRefresher == nil {
		status["message"] = "Disabled"
		return status
	}

	next := h.statsRefresher.NextRun()
	if next.IsZero() {
		status["healthy"] = false
		status["error"] = "Scheduler not running"
		return status
	}

	status["nextRun"] = next
	return status
}
