package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer than ttl are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	ips       map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per IP with bursts of the same size
func NewRateLimiter(perMinute int, ttl time.Duration) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{
		ips:       make(map[string]*limiterEntry),
		rate:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

// GetLimiter returns the bucket for ip, creating it on first use
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.ttl {
		for key, e := range rl.ips {
			if now.Sub(e.lastSeen) > rl.ttl {
				delete(rl.ips, key)
			}
		}
		rl.lastSweep = now
	}

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Middleware rejects requests over the limit with 429 RATE_LIMITED
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.GetLimiter(ip).Allow() {
			logger.Warn(c, "Rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many requests, please try again later",
				},
			})
			return
		}
		c.Next()
	}
}

// RateLimit is a per-IP limit of perMinute requests
func RateLimit(perMinute int) gin.HandlerFunc {
	return NewRateLimiter(perMinute, 10*time.Minute).Middleware()
}
