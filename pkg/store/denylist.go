package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const denylistPrefix = "revoked:"

// RedisDenylist keeps revoked ids in Redis with a TTL. With no client it
// degrades to accepting every token and logs a warning on revoke.
type RedisDenylist struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisDenylist connects to addr. When Redis cannot be reached the
// returned denylist is still usable in degraded mode.
func NewRedisDenylist(ctx context.Context, addr, password string, db int, logger zerolog.Logger) (d *RedisDenylist) {
	d = &RedisDenylist{logger: logger}
	if addr == "" {
		logger.Warn().Msg("Redis not configured, sign-out will not revoke tokens")
		return d
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("Redis unavailable, sign-out will not revoke tokens")
		_ = client.Close()
		return d
	}

	d.client = client
	return d
}

// Available reports whether revocations are actually stored.
func (d *RedisDenylist) Available() bool {
	return d.client != nil
}

// Revoke stores tokenID for ttl.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (err error) {
	if d.client == nil {
		d.logger.Warn().Str("jti", tokenID).Msg("Token revocation skipped")
		return err
	}

	if ttl <= 0 {
		return err
	}

	err = d.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err()
	if err != nil {
		err = errors.Wrap(err, "failed to revoke token")
	}
	return err
}

// IsRevoked reports whether tokenID was revoked.
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (revoked bool, err error) {
	if d.client == nil {
		return revoked, err
	}

	var n int64
	n, err = d.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		err = errors.Wrap(err, "failed to check token revocation")
		return revoked, err
	}

	revoked = n > 0
	return revoked, err
}

// Close releases the Redis connection.
func (d *RedisDenylist) Close() error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}
