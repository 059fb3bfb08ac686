package middleware

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/NomadCrew/itinerary-builder/errors"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	rateLimitMessage    = "Too many requests. Please try again later."
	rateLimitRetryAfter = 60
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// IPRateLimiter keeps one in-memory token bucket per client IP. Buckets idle
// for longer than the cleanup window are dropped by Sweep.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimiter allows requestsPerMinute per IP with the given burst.
func NewIPRateLimiter(requestsPerMinute, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  rate.Limit(float64(requestsPerMinute) / 60.0),
		burst: burst,
		now:   time.Now,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	entry, ok := i.limiters.Load(ip)
	if !ok {
		entry, _ = i.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(i.rate, i.burst)})
	}
	l := entry.(*ipLimiter)
	l.lastSeen.Store(i.now().UnixNano())
	return l.limiter
}

// Sweep removes buckets not used for maxIdle and returns how many it removed.
func (i *IPRateLimiter) Sweep(maxIdle time.Duration) int {
	cutoff := i.now().Add(-maxIdle).UnixNano()
	removed := 0
	i.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiter).lastSeen.Load() < cutoff {
			i.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked IPs.
func (i *IPRateLimiter) Len() int {
	n := 0
	i.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// StartCleanup sweeps idle buckets every interval until ctx is done.
func (i *IPRateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := i.Sweep(maxIdle); removed > 0 {
					logger.GetLogger().Debugw("Evicted idle rate limit buckets", "count", removed)
				}
			}
		}
	}()
}

// RateLimit returns a middleware that rate limits by IP. Rejections go
// through ErrorHandler as a RateLimitExceeded error.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return i.RateLimitWith(nil)
}

// RateLimitWith is RateLimit with a custom response for rejected requests.
// A nil onLimited falls back to the RateLimitExceeded error.
func (i *IPRateLimiter) RateLimitWith(onLimited gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if i.getLimiter(c.ClientIP()).Allow() {
			c.Next()
			return
		}
		if onLimited == nil {
			_ = c.Error(apperrors.RateLimitExceeded(rateLimitMessage, rateLimitRetryAfter))
			c.Abort()
			return
		}
		c.Header("Retry-After", strconv.Itoa(rateLimitRetryAfter))
		onLimited(c)
		c.Abort()
	}
}
