// Package resettoken provides a Redis-backed store for password-reset
// token digests. Credential-store implementations that keep reset
// state out of their primary database delegate their token
// persistence here; Insert matches the tail of the credential store's
// insert seam, so embedding works without adapter code.
//
// Only digests are stored, never raw tokens. A token is single-use:
// Consume removes it atomically, so two racing redemptions cannot
// both succeed.
package resettoken

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conducta/authkit/internal/random"
)

// ErrTokenInvalid covers unknown, expired, and already-consumed
// tokens. The three are indistinguishable to the caller.
var ErrTokenInvalid = errors.New("reset token invalid or expired")

// ErrStoreUnavailable wraps Redis transport failures.
var ErrStoreUnavailable = errors.New("reset token store unavailable")

// RedisStore keeps one key per outstanding token digest, expiring
// server-side at the token's deadline.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *RedisStore) {
		s.now = now
	}
}

// NewRedisStore creates a store writing under the given key prefix.
func NewRedisStore(client redis.UniversalClient, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = "akrt"
	}
	s := &RedisStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(digest [32]byte) string {
	return s.prefix + ":" + hex.EncodeToString(digest[:])
}

// Insert records a token digest for accountID until expiresAt. A
// deadline already in the past is rejected.
func (s *RedisStore) Insert(ctx context.Context, accountID string, tokenDigest [32]byte, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: expiry %s not in the future", ErrTokenInvalid, expiresAt.Format(time.RFC3339))
	}

	if err := s.redis.Set(ctx, s.key(tokenDigest), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Consume redeems a raw token, returning the account it was issued
// for and removing it in the same step. A malformed, unknown,
// expired, or already-consumed token returns [ErrTokenInvalid].
func (s *RedisStore) Consume(ctx context.Context, token string) (string, error) {
	digest, err := random.DigestToken(token)
	if err != nil {
		return "", ErrTokenInvalid
	}

	accountID, err := s.redis.GetDel(ctx, s.key(digest)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenInvalid
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return accountID, nil
}
