package ratelimit

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthsync/backend/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyRequestClient = "ratelimit:request:%s"

// RequestLimiter throttles API traffic per client address. A nil limiter
// (rate limiting disabled) admits everything.
type RequestLimiter struct {
	enabled bool

	log    *zap.Logger
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewRequestLimiter builds the limiter from configuration. Disabled config
// yields a nil limiter, which every method treats as a passthrough.
func NewRequestLimiter(cfg config.Config, log *zap.Logger) (*RequestLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.RequestRate <= 0 || limitCfg.RequestBurst <= 0 {
		return nil, errors.New("request rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &RequestLimiter{
		enabled: true,
		log:     log.Named("ratelimit"),
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.RequestRate,
		burst:   limitCfg.RequestBurst,
	}, nil
}

func (l *RequestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Middleware admits or rejects each request by client IP. Redis outages
// fail open: throttling is protective, not load-bearing.
func (l *RequestLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}

		key := fmt.Sprintf(keyRequestClient, c.ClientIP())
		res, err := l.bucket.Allow(c.Request.Context(), key, l.rate, l.burst)
		if err != nil {
			l.log.Warn("rate limit check failed, admitting request", zap.Error(err))
			c.Next()
			return
		}

		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter/time.Second)))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later.",
			})
			return
		}

		c.Next()
	}
}
