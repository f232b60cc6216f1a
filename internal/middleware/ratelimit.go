package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"adminpanel/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter counts requests per client IP in fixed one-second windows in
// redis. When redis is missing or unreachable it falls back to an in-process
// token bucket per IP.
type RateLimiter struct {
	rdb       *redis.Client
	perSecond int
	keyPrefix string

	mu    sync.Mutex
	local map[string]*localLimiter
}

type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter accepts a nil rdb for purely local limiting.
func NewRateLimiter(rdb *redis.Client, perSecond int, keyPrefix string) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RateLimiter{
		rdb:       rdb,
		perSecond: perSecond,
		keyPrefix: keyPrefix,
		local:     make(map[string]*localLimiter),
	}
}

func (l *RateLimiter) localAllow(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.local[ip]
	if !ok {
		entry = &localLimiter{limiter: rate.NewLimiter(rate.Limit(l.perSecond), l.perSecond)}
		l.local[ip] = entry
	}
	entry.lastSeen = time.Now()
	allowed := entry.limiter.Allow()
	return allowed, int(entry.limiter.Tokens())
}

// redisAllow returns the count for the current window.
func (l *RateLimiter) redisAllow(ctx context.Context, ip string, now time.Time) (int64, error) {
	key := l.keyPrefix + ip + ":" + strconv.FormatInt(now.Unix(), 10)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Prune drops local buckets idle for longer than idle.
func (l *RateLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	cutoff := time.Now().Add(-idle)
	for ip, entry := range l.local {
		if entry.lastSeen.Before(cutoff) {
			delete(l.local, ip)
			removed++
		}
	}
	return removed
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(l.perSecond)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		c.Header("X-RateLimit-Limit", limit)

		allowed, remaining := false, 0
		redisOK := false
		if l.rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 100*time.Millisecond)
			count, err := l.redisAllow(ctx, ip, time.Now())
			cancel()
			if err != nil {
				logger.Warn("redis rate limit failed, switching to local fallback",
					zap.Error(err),
					zap.String("ip", ip))
			} else {
				redisOK = true
				allowed = count <= int64(l.perSecond)
				remaining = max(l.perSecond-int(count), 0)
			}
		}
		if !redisOK {
			allowed, remaining = l.localAllow(ip)
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"statusCode": http.StatusTooManyRequests,
				"message":    "Too many requests",
			})
			return
		}
		c.Next()
	}
}
