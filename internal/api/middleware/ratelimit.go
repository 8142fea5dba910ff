package middleware

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleet-dashboard/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware rejects requests over the client's limit with 429. A
// failing limiter lets the request through.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := getClientID(c)
		endpoint := getEndpointID(c)

		allowed, resetTime, err := limiter.Allow(clientID, endpoint)
		if err != nil {
			log.WithError(err).WithField("endpoint", endpoint).Warn("Rate limiter unavailable")
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		setRateLimitHeaders(c, limiter.Limit(clientID, endpoint), allowed, resetTime)

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"message":    fmt.Sprintf("Too many requests. Try again in %v", resetTime.Round(time.Second)),
				"error":      "Rate limit exceeded",
				"code":       "RATE_LIMIT_EXCEEDED",
				"retryAfter": retryAfterSeconds(resetTime),
			})
			return
		}

		c.Next()
	}
}

// getClientID prefers the authenticated user, then the caller's address and
// user agent.
func getClientID(c *gin.Context) string {
	if uid := c.GetString(ContextUserID); uid != "" {
		return "user:" + uid
	}

	return fmt.Sprintf("anon:%s:%s", getClientIP(c), hashString(c.GetHeader("User-Agent")))
}

func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}

func hashString(s string) string {
	if s == "" {
		return "unknown"
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

func getEndpointID(c *gin.Context) string {
	return c.Request.Method + ":" + normalizePath(c.Request.URL.Path)
}

// normalizePath replaces id segments with '*' so every vehicle shares one
// bucket.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if isID(segment) {
			segments[i] = "*"
		}
	}
	return strings.Join(segments, "/")
}

func isID(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

func setRateLimitHeaders(c *gin.Context, limit ratelimit.RateLimit, allowed bool, resetTime time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit.RequestsPerMinute))
	c.Header("X-RateLimit-Window", strconv.Itoa(int(limit.WindowSize.Seconds())))
	c.Header("X-RateLimit-Burst", strconv.Itoa(limit.BurstSize))

	if !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(resetTime)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetTime).Unix(), 10))
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int((d + time.Second - 1) / time.Second)
	return max(seconds, 1)
}
