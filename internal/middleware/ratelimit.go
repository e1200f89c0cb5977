package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/config"
	"computing-marketplace/api/internal/response"
)

// RateLimiter is a sliding-window log per client IP kept in a Redis sorted set.
type RateLimiter struct {
	client redis.Cmdable
	window time.Duration
	max    int
	prefix string
	log    zerolog.Logger
	now    func() time.Time
}

func NewRateLimiter(client redis.Cmdable, cfg config.RateLimitConfig, log zerolog.Logger) *RateLimiter {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RateLimiter{
		client: client,
		window: cfg.Window,
		max:    cfg.Max,
		prefix: prefix,
		log:    log,
		now:    time.Now,
	}
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
}

func (l *RateLimiter) check(ctx context.Context, key string) (decision, error) {
	now := l.now()
	windowStart := now.Add(-l.window)
	redisKey := l.prefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	zcard := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, l.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return decision{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(zcard.Val())
	if count < l.max {
		return decision{allowed: true, remaining: l.max - count - 1}, nil
	}

	retry := l.window
	if first := oldest.Val(); len(first) > 0 {
		retry = time.Unix(0, int64(first[0].Score)).Add(l.window).Sub(now)
	}
	return decision{allowed: false, retryAfter: retry}, nil
}

// Handler fails open: when Redis errors the request is served and a warning logged.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := l.check(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("rate limiter unavailable; allowing request")
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(d.remaining, 0)))

		if !d.allowed {
			seconds := int(math.Ceil(d.retryAfter.Seconds()))
			h.Set("Retry-After", strconv.Itoa(max(seconds, 1)))
			response.Abort(c, apperr.New(apperr.KindTooManyRequests, "Too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
