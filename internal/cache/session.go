package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userSessionKeyPrefix = "session:"

	// DefaultUserSessionTTL is how long a passwordless session lives.
	DefaultUserSessionTTL = 30 * 24 * time.Hour
)

// Common session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// CreateUserSession stores an opaque session token mapped to the email it
// authenticates. The session itself carries no entitlement; the users
// table is rechecked on every dashboard entry.
func (c *Cache) CreateUserSession(ctx context.Context, token, email string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultUserSessionTTL
	}

	key := userSessionKeyPrefix + hashToken(token)
	if err := c.client.Set(ctx, key, email, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// GetUserSession resolves a session token to the authenticated email.
func (c *Cache) GetUserSession(ctx context.Context, token string) (string, error) {
	key := userSessionKeyPrefix + hashToken(token)

	email, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	return email, nil
}

// DestroyUserSession invalidates a session token. Destroying a missing
// session is not an error.
func (c *Cache) DestroyUserSession(ctx context.Context, token string) error {
	key := userSessionKeyPrefix + hashToken(token)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
