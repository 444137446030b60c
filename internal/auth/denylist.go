package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:"

// RedisDenylist records access tokens revoked before their natural
// expiry.  It is an optimization layer, not the source of truth: a key
// that was never written means "not revoked", and every entry carries a
// TTL equal to the token's remaining lifetime so the set never outlives
// the tokens it denies.
//
// failOpen controls read behavior when Redis is unreachable: false (the
// default) propagates the failure so the request is denied, true treats
// the token as not revoked.  Writes are never fail-open: a logout whose
// denylist write did not land must fail loudly, otherwise the client
// would believe a still-accepted token is dead.
type RedisDenylist struct {
	rdb      *redis.Client
	failOpen bool
}

// NewRedisDenylist builds a denylist over the given client.
func NewRedisDenylist(rdb *redis.Client, failOpen bool) *RedisDenylist {
	return &RedisDenylist{rdb: rdb, failOpen: failOpen}
}

// Revoke inserts a token id with the given TTL.  A non-positive TTL
// means the token has already expired on its own; nothing is written.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if d.rdb == nil {
		return errors.New("denylist write: no cache configured")
	}
	if err := d.rdb.Set(ctx, denylistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist write: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id is on the denylist.  A missing
// key is "not revoked"; only an unreachable cache triggers the
// fail-open/fail-closed policy.
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d.rdb == nil {
		if d.failOpen {
			return false, nil
		}
		return false, errors.New("denylist read: no cache configured")
	}
	n, err := d.rdb.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		if d.failOpen {
			return false, nil
		}
		return false, fmt.Errorf("denylist read: %w", err)
	}
	return n > 0, nil
}
