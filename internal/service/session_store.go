package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore 记录已登出的令牌 ID
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisSessionStore struct {
	client *redis.Client
}

// NewSessionStore client 为 nil 时登出只清除 cookie
func NewSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nopSessionStore{}
	}
	return &redisSessionStore{client: client}
}

func revokedKey(tokenID string) string { return "session:revoked:" + tokenID }

func (s *redisSessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (s *redisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type nopSessionStore struct{}

func (nopSessionStore) Revoke(context.Context, string, time.Time) error { return nil }

func (nopSessionStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
