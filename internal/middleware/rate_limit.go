// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/utils"
)

// clientLimiters hands out one token bucket per client IP. Idle clients are
// evicted once their bucket would be full again anyway, so the map stays
// bounded by recent traffic.
type clientLimiters struct {
	mtx      sync.Mutex
	buckets  map[string]*clientBucket
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastScan time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(limit rate.Limit, burst int) *clientLimiters {
	idle := 3 * time.Minute
	if refill := time.Duration(float64(burst)/float64(limit)) * time.Second; refill > idle {
		idle = refill
	}
	return &clientLimiters{
		buckets: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
		idleTTL: idle,
	}
}

func (cl *clientLimiters) allow(ip string) bool {
	cl.mtx.Lock()
	defer cl.mtx.Unlock()

	now := time.Now()
	if now.Sub(cl.lastScan) > cl.idleTTL {
		for key, b := range cl.buckets {
			if now.Sub(b.lastSeen) > cl.idleTTL {
				delete(cl.buckets, key)
			}
		}
		cl.lastScan = now
	}

	b, ok := cl.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.Allow()
}

// RateLimit rejects over-limit requests with the shared error envelope so
// clients see the same shape as every other API error.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	cl := newClientLimiters(limit, burst)
	return func(c *gin.Context) {
		if !cl.allow(c.ClientIP()) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tier constructors bind the configured budgets: a per-second budget for the
// general API and per-minute budgets for the expensive auth and upload paths.

func GeneralRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return RateLimit(rate.Limit(cfg.GeneralPerSecond), cfg.GeneralPerSecond)
}

func AuthRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return RateLimit(rate.Every(time.Minute/time.Duration(cfg.AuthPerMinute)), cfg.AuthPerMinute)
}

func UploadRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return RateLimit(rate.Every(time.Minute/time.Duration(cfg.UploadPerMinute)), cfg.UploadPerMinute)
}
