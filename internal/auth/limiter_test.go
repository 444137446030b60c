package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiterTripsAfterMax(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := NewLoginLimiter(rdb, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "alice"), "attempt %d allowed", i+1)
		l.RecordFailure(ctx, "alice")
	}
	assert.ErrorIs(t, l.Allow(ctx, "alice"), ErrTooManyAttempts)

	// Other accounts are unaffected.
	assert.NoError(t, l.Allow(ctx, "bob"))
}

func TestLoginLimiterWindowRollsOver(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewLoginLimiter(rdb, 2, time.Minute)
	ctx := context.Background()

	l.RecordFailure(ctx, "alice")
	l.RecordFailure(ctx, "alice")
	require.ErrorIs(t, l.Allow(ctx, "alice"), ErrTooManyAttempts)

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, l.Allow(ctx, "alice"))
}

func TestLoginLimiterResetOnSuccess(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := NewLoginLimiter(rdb, 2, time.Minute)
	ctx := context.Background()

	l.RecordFailure(ctx, "alice")
	l.RecordFailure(ctx, "alice")
	require.ErrorIs(t, l.Allow(ctx, "alice"), ErrTooManyAttempts)

	l.Reset(ctx, "alice")
	assert.NoError(t, l.Allow(ctx, "alice"))
}

func TestLoginLimiterFailOpen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewLoginLimiter(rdb, 2, time.Minute)
	mr.Close()

	// An unreachable cache disables throttling instead of locking the
	// account; the password check still stands on its own.
	assert.NoError(t, l.Allow(context.Background(), "alice"))

	var nilLimiter *LoginLimiter
	assert.NoError(t, nilLimiter.Allow(context.Background(), "alice"),
		"a nil limiter is a disabled limiter")
}
