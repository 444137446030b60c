package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDenylistRevokeAndCheck(t *testing.T) {
	mr, rdb := newTestRedis(t)
	d := NewRedisDenylist(rdb, false)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "unknown id is not revoked")

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// The entry dies with the token's natural expiry.
	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylistExpiredTokenIsNoop(t *testing.T) {
	mr, rdb := newTestRedis(t)
	d := NewRedisDenylist(rdb, false)

	require.NoError(t, d.Revoke(context.Background(), "jti-old", -time.Second))
	assert.Empty(t, mr.Keys(), "nothing written for an already-expired token")
}

func TestDenylistFailClosed(t *testing.T) {
	mr, rdb := newTestRedis(t)
	d := NewRedisDenylist(rdb, false)
	mr.Close() // simulate an outage

	_, err := d.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err, "fail-closed propagates the outage")

	assert.Error(t, d.Revoke(context.Background(), "jti-1", time.Minute),
		"writes fail loudly regardless of read policy")
}

func TestDenylistFailOpen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	d := NewRedisDenylist(rdb, true)
	mr.Close()

	revoked, err := d.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err, "fail-open degrades reads to not-revoked")
	assert.False(t, revoked)

	assert.Error(t, d.Revoke(context.Background(), "jti-1", time.Minute),
		"writes still fail loudly in fail-open mode")
}
