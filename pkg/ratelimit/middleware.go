// Package ratelimit throttles the ingest API per client address. The
// broker path is not limited; backpressure there comes from the consumer
// group itself.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pushrender/pkg/metrics"
)

type RateLimitConfig struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RPS:             10.0,
		Burst:           20,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// pool tracks one token bucket per client address and evicts buckets
// idle past MaxAge.
type pool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	cfg     RateLimitConfig
}

func newPool(cfg RateLimitConfig) *pool {
	p := &pool{
		clients: make(map[string]*clientLimiter),
		cfg:     cfg,
	}
	go p.evictLoop()
	return p
}

func (p *pool) get(addr string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	cl, ok := p.clients[addr]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(p.cfg.RPS), p.cfg.Burst),
		}
		p.clients[addr] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (p *pool) evictLoop() {
	ticker := time.NewTicker(p.cfg.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-p.cfg.MaxAge)
		p.mu.Lock()
		for addr, cl := range p.clients {
			if cl.lastSeen.Before(cutoff) {
				delete(p.clients, addr)
			}
		}
		p.mu.Unlock()
	}
}

func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	limiters := newPool(cfg)
	limitHeader := strconv.FormatFloat(cfg.RPS, 'f', -1, 64)

	return func(c *gin.Context) {
		addr := c.ClientIP()
		if addr == "" {
			addr = c.RemoteIP()
		}

		limiter := limiters.get(addr)
		c.Header("X-RateLimit-Limit", limitHeader)

		if !limiter.Allow() {
			metrics.RateLimitRequestsTotal.WithLabelValues("limited").Inc()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"error_code": "RATE_LIMIT_EXCEEDED",
			})
			c.Abort()
			return
		}

		metrics.RateLimitRequestsTotal.WithLabelValues("allowed").Inc()

		remaining := int(limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}
