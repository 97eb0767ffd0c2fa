package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLimiter keeps attempt timestamps in a Redis sorted set so the
// sliding window survives restarts and is shared across instances.
// Backend errors fail open: the limiter is an abuse brake, not a
// correctness dependency, and an unreachable Redis must not take the
// whole auth surface down with it.
type RedisLimiter struct {
	client redis.UniversalClient
	logger *logrus.Logger
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, logger *logrus.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func (l *RedisLimiter) key(action, identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", action, identifier)
}

func (l *RedisLimiter) Allow(ctx context.Context, action, identifier string, maxAttempts int, window time.Duration) bool {
	now := l.now()
	key := l.key(action, identifier)
	cutoff := now.Add(-window).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.WithError(err).WithField("action", action).Warn("Rate limiter backend unavailable, failing open")
		return true
	}

	if countCmd.Val() >= int64(maxAttempts) {
		return false
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.WithError(err).WithField("action", action).Warn("Failed to record rate limit attempt")
	}

	return true
}
