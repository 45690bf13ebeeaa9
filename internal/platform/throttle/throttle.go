// Copyright (c) 2026 Trailgo. All rights reserved.

/*
Package throttle provides Redis-backed fixed-window counters for
credential-sensitive endpoints.

The general per-IP token bucket in the middleware package protects the whole
API surface; this package adds a second, much stricter layer in front of the
login and password-reset operations, where each request performs expensive
bcrypt work and each failure leaks a bit of information to an attacker.

Counters are keyed per client and per operation, incremented atomically with
INCR, and expire with the window. Losing Redis loses only throttle state,
never account data.
*/
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/platform/constants"
)

// Limiter enforces a fixed-window request budget against Redis.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewLoginLimiter builds the limiter guarding the login endpoint.
func NewLoginLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		prefix: constants.RedisPrefixLoginThrottle,
		limit:  constants.LoginThrottleLimit,
		window: constants.LoginThrottleWindow,
	}
}

// NewResetLimiter builds the limiter guarding the forgot-password endpoint.
func NewResetLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		prefix: constants.RedisPrefixResetThrottle,
		limit:  constants.ResetThrottleLimit,
		window: constants.ResetThrottleWindow,
	}
}

// Allow consumes one unit of the caller's budget for the current window.
//
// Returns an [apperr.AppError] with status 429 when the budget is exhausted,
// and a wrapped transport error when Redis itself is unreachable. Callers
// treat the latter as a server fault, not as permission to proceed.
func (limiter *Limiter) Allow(ctx context.Context, key string) error {
	redisKey := limiter.prefix + key

	count, err := limiter.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("throttle: counter increment failed: %w", err)
	}

	// First hit in the window owns setting the expiry.
	if count == 1 {
		if err := limiter.client.Expire(ctx, redisKey, limiter.window).Err(); err != nil {
			return fmt.Errorf("throttle: counter expiry failed: %w", err)
		}
	}

	if count > int64(limiter.limit) {
		retryAfter := limiter.client.TTL(ctx, redisKey).Val()
		if retryAfter <= 0 {
			retryAfter = limiter.window
		}
		return apperr.RateLimited(int(retryAfter.Seconds()))
	}

	return nil
}
