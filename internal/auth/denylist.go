package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// RedisDenylist stores revoked token IDs in Redis with a TTL matching the
// token's remaining lifetime.
type RedisDenylist struct {
	rdb *redis.Client
}

// NewRedisDenylist creates a Redis-backed token denylist.
func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

// Revoke marks a token ID as revoked until ttl elapses.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return d.rdb.Set(ctx, denylistPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked.
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
