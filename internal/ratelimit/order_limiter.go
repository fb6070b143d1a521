package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fixora/payflow/internal/config"
)

// OrderLimiter throttles order creation per client. A nil limiter allows
// everything, which is how the service runs when rate limiting is disabled.
type OrderLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewOrderLimiter(cfg config.Config, log *zap.Logger) *OrderLimiter {
	rl := cfg.RateLimit
	if !rl.Enabled || rl.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     rl.RedisAddr,
		Password: rl.RedisPassword,
		DB:       rl.RedisDB,
	})
	return &OrderLimiter{
		bucket: NewTokenBucket(client),
		rate:   rl.OrderRate,
		burst:  rl.OrderBurst,
		log:    log.Named("ratelimit.order"),
	}
}

// Allow reports whether the caller identified by key may open another order.
// Redis trouble fails open: an unavailable limiter must not block payments.
func (l *OrderLimiter) Allow(ctx context.Context, key string) (bool, *Result) {
	if l == nil {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, "ratelimit:order:"+key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limiter unavailable", zap.Error(err))
		return true, nil
	}
	return res.Allowed, res
}
