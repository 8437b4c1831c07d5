package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccountRevoker invalidates every token an account holds that was issued before a cutoff.
type AccountRevoker interface {
	RevokeAccount(ctx context.Context, accountID uint64, since time.Time, ttl time.Duration) error
	RevokedAfter(ctx context.Context, accountID uint64) (time.Time, error)
}

// RedisRevoker stores per-account revocation cutoffs in Redis.
// A cutoff only needs to live as long as the longest token lifetime.
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

// NewRedisRevoker builds a Redis-backed revoker on an existing client
func NewRedisRevoker(client *redis.Client, prefix string) *RedisRevoker {
	if prefix == "" {
		prefix = "designerhub:revoked"
	}
	return &RedisRevoker{client: client, prefix: prefix}
}

// RevokeAccount records since (truncated to whole seconds, like JWT iat) as the account's cutoff
func (r *RedisRevoker) RevokeAccount(ctx context.Context, accountID uint64, since time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cutoff := since.UTC().Truncate(time.Second).Unix()
	if err := r.client.Set(ctx, r.key(accountID), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("revoke account %d: %w", accountID, err)
	}
	return nil
}

// RevokedAfter returns the account's cutoff, or the zero time when none is set
func (r *RedisRevoker) RevokedAfter(ctx context.Context, accountID uint64) (time.Time, error) {
	val, err := r.client.Get(ctx, r.key(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read revocation for account %d: %w", accountID, err)
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt revocation for account %d: %w", accountID, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

func (r *RedisRevoker) key(accountID uint64) string {
	return r.prefix + ":" + strconv.FormatUint(accountID, 10)
}
