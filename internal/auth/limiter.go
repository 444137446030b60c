package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptPrefix = "login_fail:"

// LoginLimiter throttles repeated failed logins per account name with a
// fixed window counter in Redis.  Unlike the denylist it is always
// fail-open: a Redis outage disables throttling rather than locking
// everyone out, since the limiter only ever hardens the password check,
// it never replaces it.
type LoginLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

// NewLoginLimiter builds a limiter allowing max failures per window.  A
// max of zero disables the limiter entirely.
func NewLoginLimiter(rdb *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, max: max, window: window}
}

// Allow reports whether a login attempt for the given account name may
// proceed.  It returns ErrTooManyAttempts once the window holds max or
// more recorded failures.
func (l *LoginLimiter) Allow(ctx context.Context, username string) error {
	if l == nil || l.rdb == nil || l.max <= 0 {
		return nil
	}
	n, err := l.rdb.Get(ctx, loginAttemptPrefix+username).Int64()
	if err != nil {
		return nil // missing key or unreachable cache: no throttle
	}
	if n >= int64(l.max) {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts one failed attempt.  The first failure in a
// window starts the expiry clock; the window is not sliding.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) {
	if l == nil || l.rdb == nil || l.max <= 0 {
		return
	}
	key := loginAttemptPrefix + username
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if n == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.rdb == nil || l.max <= 0 {
		return
	}
	l.rdb.Del(ctx, loginAttemptPrefix+username)
}
