package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const ResetTokenTTL = 5 * time.Minute

var ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

// ResetTokenStore holds single-use password reset tokens.
type ResetTokenStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take consumes the token and returns its user id.
	Take(ctx context.Context, token string) (string, error)
}

type RedisResetTokens struct {
	client *redis.Client
}

func NewRedisResetTokens(client *redis.Client) *RedisResetTokens {
	return &RedisResetTokens{client: client}
}

func resetKey(token string) string {
	return "password-reset:" + token
}

func (s *RedisResetTokens) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, resetKey(token), userID, ttl).Err()
}

func (s *RedisResetTokens) Take(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err == redis.Nil {
		return "", ErrResetTokenInvalid
	}
	return userID, err
}

type resetEntry struct {
	userID  string
	expires time.Time
}

// MemoryResetTokens is the ResetTokenStore used without Redis.
type MemoryResetTokens struct {
	mu      sync.Mutex
	entries map[string]resetEntry
	now     func() time.Time
}

func NewMemoryResetTokens() *MemoryResetTokens {
	return &MemoryResetTokens{entries: map[string]resetEntry{}, now: time.Now}
}

func (s *MemoryResetTokens) Put(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = resetEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryResetTokens) Take(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	delete(s.entries, token)
	if !ok || !s.now().Before(e.expires) {
		return "", ErrResetTokenInvalid
	}
	return e.userID, nil
}
