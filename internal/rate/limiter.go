package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Class identifies the operation family a rate limit applies to.
type Class string

const (
	// ClassLogin is an exported constant or variable used by the session engine.
	ClassLogin Class = "login"
	// ClassRefresh is an exported constant or variable used by the session engine.
	ClassRefresh Class = "refresh"
	// ClassAccount is an exported constant or variable used by the session engine.
	ClassAccount Class = "account"
)

// Bucket is a fixed-window budget for one operation class.
type Bucket struct {
	MaxRequests int
	Window      time.Duration
}

// Config holds rate limiter tuning parameters.
type Config struct {
	Enabled bool
	Login   Bucket
	Refresh Bucket
	Account Bucket
}

// Limiter enforces per-class, per-client-IP fixed-window rate limits
// using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow counts one request against the class budget for the client IP.
// Returns [ErrRateLimited] once the window budget is exhausted; the request
// that hits the boundary count is still allowed.
func (l *Limiter) Allow(ctx context.Context, class Class, ip string) error {
	if l == nil || !l.config.Enabled {
		return nil
	}

	bucket := l.bucketFor(class)
	if bucket.MaxRequests <= 0 || bucket.Window <= 0 {
		return nil
	}

	if ip == "" {
		ip = "unknown"
	}

	count, err := l.incrementWithTTL(ctx, classKey(class, ip), bucket.Window)
	if err != nil {
		return err
	}
	if count > int64(bucket.MaxRequests) {
		return ErrRateLimited
	}

	return nil
}

// Remaining reports how many requests the class budget still allows for the
// client IP in the current window. Missing keys return the full budget.
func (l *Limiter) Remaining(ctx context.Context, class Class, ip string) (int, error) {
	bucket := l.bucketFor(class)
	if l == nil || !l.config.Enabled || bucket.MaxRequests <= 0 {
		return bucket.MaxRequests, nil
	}

	if ip == "" {
		ip = "unknown"
	}

	count, err := l.redis.Get(ctx, classKey(class, ip)).Int64()
	if err != nil {
		if err == redis.Nil {
			return bucket.MaxRequests, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	remaining := bucket.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the window counter for a class and client IP.
func (l *Limiter) Reset(ctx context.Context, class Class, ip string) error {
	if l == nil || !l.config.Enabled {
		return nil
	}

	if ip == "" {
		ip = "unknown"
	}

	if err := l.redis.Del(ctx, classKey(class, ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func (l *Limiter) bucketFor(class Class) Bucket {
	switch class {
	case ClassLogin:
		return l.config.Login
	case ClassRefresh:
		return l.config.Refresh
	case ClassAccount:
		return l.config.Account
	default:
		return Bucket{}
	}
}

func classKey(class Class, ip string) string {
	return "arl:" + string(class) + ":" + ip
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
