package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

// LoginThrottle counts failed login attempts per identifier in Redis and
// blocks further attempts once the limit is reached within the window. Redis
// outages fail open with a warning; losing the throttle is preferable to
// locking every user out.
type LoginThrottle struct {
	client *redis.Client
	logger *slog.Logger
	limit  int64
	window time.Duration
}

// NewLoginThrottle constructs a LoginThrottle.
func NewLoginThrottle(client *redis.Client, logger *slog.Logger, limit int64, window time.Duration) *LoginThrottle {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{client: client, logger: logger, limit: limit, window: window}
}

// Allow reports whether another attempt for the identifier is permitted.
func (t *LoginThrottle) Allow(ctx context.Context, identifier string) error {
	if t == nil || t.client == nil {
		return nil
	}
	count, err := t.client.Get(ctx, t.key(identifier)).Int64()
	if err != nil {
		if err != redis.Nil && t.logger != nil {
			t.logger.Warn("login throttle read", slog.Any("error", err))
		}
		return nil
	}
	if count >= t.limit {
		return shared.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure increments the failure counter, starting the window on the
// first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) {
	if t == nil || t.client == nil {
		return
	}
	key := t.key(identifier)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("login throttle incr", slog.Any("error", err))
		}
		return
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil && t.logger != nil {
			t.logger.Warn("login throttle expire", slog.Any("error", err))
		}
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.Del(ctx, t.key(identifier)).Err(); err != nil && t.logger != nil {
		t.logger.Warn("login throttle reset", slog.Any("error", err))
	}
}

func (t *LoginThrottle) key(identifier string) string {
	return "login_attempts:" + identifier
}
