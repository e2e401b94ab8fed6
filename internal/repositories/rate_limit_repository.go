package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopease/storefront/internal/config"
)

const rateLimitKeyPrefix = "write_rate"

// RateDecision is the outcome of one rate limit check.
type RateDecision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type RateLimitRepository interface {
	Allow(ctx context.Context, subject string) (RateDecision, error)
}

type redisRateLimiter struct {
	client *redis.Client
	cfg    config.RateConfig
	now    func() time.Time
}

func NewRateLimitRepo(client *redis.Client, cfg config.RateConfig) RateLimitRepository {
	return &redisRateLimiter{client: client, cfg: cfg, now: time.Now}
}

// Allow records one request of subject in a sliding window kept as a sorted
// set of timestamps, and reports whether it fits under the limit.
func (r *redisRateLimiter) Allow(ctx context.Context, subject string) (RateDecision, error) {

	key := fmt.Sprintf("%s:%s", rateLimitKeyPrefix, subject)

	now := r.now().UnixNano()
	windowStart := now - r.cfg.WindowSize.Nanoseconds()
	member := strconv.FormatInt(now, 10)

	pipe := r.client.Pipeline()

	// entries older than the window no longer count
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.cfg.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		return RateDecision{}, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	requests := count.Val()

	if requests <= r.cfg.MaxRequests {
		return RateDecision{Allowed: true, Remaining: r.cfg.MaxRequests - requests}, nil
	}

	scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).Result()
	if err != nil || len(scores) == 0 {
		slog.Warn("Failed to read oldest request for rate limit", slog.String("key", key), slog.Any("error", err))
		return RateDecision{RetryAfter: r.cfg.WindowSize}, nil
	}

	oldest := int64(scores[0].Score)
	retryAfter := time.Duration(max(oldest+r.cfg.WindowSize.Nanoseconds()-now, 0))

	return RateDecision{RetryAfter: retryAfter}, nil
}
