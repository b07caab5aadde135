package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles attempt submissions per user with a fixed one-minute
// window in Redis. The engine runs without it when Redis is not configured.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter connects to Redis and creates a limiter allowing perMinute
// submissions per user.
func NewRateLimiter(redisURL string, perMinute int) (*RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RateLimiter{
		client: client,
		limit:  perMinute,
		window: time.Minute,
	}, nil
}

// Allow reports whether the user is under the submission limit for the
// current window.
func (r *RateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	key := fmt.Sprintf("attempt_rate:%s", userID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(r.limit), nil
}

// Close closes the Redis connection.
func (r *RateLimiter) Close() error {
	return r.client.Close()
}
