package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotUnavailable wraps Redis transport failures.
var ErrSlotUnavailable = errors.New("session slot unavailable")

// RedisSlot stores one client context's snapshot under a single Redis
// key with the session TTL. The key embeds the client-context
// identifier, so each context gets exactly one slot.
type RedisSlot struct {
	redis      redis.UniversalClient
	key        string
	legacyKeys []string
}

// RedisSlotOption configures a RedisSlot.
type RedisSlotOption func(*RedisSlot)

// WithLegacyKeys registers additional keys removed on Delete. Used to
// clean up slots written by earlier deployments under older names.
func WithLegacyKeys(keys ...string) RedisSlotOption {
	return func(s *RedisSlot) {
		s.legacyKeys = append(s.legacyKeys, keys...)
	}
}

// NewRedisSlot creates a slot for the given client context. An empty
// contextID gets a random one; the caller then owns a slot no other
// context can collide with, at the cost of not being able to find it
// again after a restart.
func NewRedisSlot(client redis.UniversalClient, prefix, contextID string, opts ...RedisSlotOption) *RedisSlot {
	if prefix == "" {
		prefix = "aks"
	}
	if contextID == "" {
		contextID = uuid.NewString()
	}
	s := &RedisSlot{
		redis: client,
		key:   prefix + ":" + contextID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the stored snapshot bytes, or [ErrSlotEmpty] when the
// key is absent or has expired server-side.
func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	return data, nil
}

// Write stores data with the given TTL, overwriting unconditionally.
func (s *RedisSlot) Write(ctx context.Context, data []byte, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	return nil
}

// Delete removes the slot key and any registered legacy keys.
func (s *RedisSlot) Delete(ctx context.Context) error {
	keys := append([]string{s.key}, s.legacyKeys...)
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	return nil
}
