package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// authEventsChannel carries auth-state changes between instances.
const authEventsChannel = "todocollab:auth:events"

// RedisStore handles Redis operations: active-session tracking, rate
// limit counters and the auth-state event channel.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for middleware that shares the
// connection (rate limiting).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// sessionKey returns the key tracking an active session.
func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// rateLimitKey returns the key for a rate limit counter.
func rateLimitKey(bucket, caller string) string {
	return fmt.Sprintf("ratelimit:%s:%s", bucket, caller)
}

// TrackSession marks a session as active until its token expires.
func (s *RedisStore) TrackSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID), "1", ttl).Err()
}

// RevokeSession removes a session. Verification fails afterwards even
// if the token itself has not expired.
func (s *RedisStore) RevokeSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// IsSessionActive reports whether the session is still tracked.
func (s *RedisStore) IsSessionActive(ctx context.Context, sessionID string) (bool, error) {
	exists, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// IncrRateLimit increments a fixed-window counter and returns the new
// count. The window TTL is set on first increment.
func (s *RedisStore) IncrRateLimit(ctx context.Context, bucket, caller string, window time.Duration) (int64, error) {
	key := rateLimitKey(bucket, caller)

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// PublishAuthEvent sends an auth-state change to every instance.
func (s *RedisStore) PublishAuthEvent(ctx context.Context, payload []byte) error {
	return s.client.Publish(ctx, authEventsChannel, payload).Err()
}

// SubscribeAuthEvents subscribes to the auth-state channel. The caller
// owns the returned PubSub and must close it.
func (s *RedisStore) SubscribeAuthEvents(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, authEventsChannel)
}
