package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes for token and session entries.
const (
	signinTokenKeyPrefix = "signin:"

	// DefaultSignInTokenTTL bounds how long an emailed link stays usable.
	DefaultSignInTokenTTL = 15 * time.Minute
)

// Common token errors.
var (
	ErrTokenNotFound = errors.New("sign-in token not found or already used")
)

// hashToken derives the storage key digest for a plaintext token.
// Only the digest is stored, so a Redis dump never reveals usable links.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// StoreSignInToken stores a sign-in token mapped to the recipient email.
// The token expires after ttl and can be consumed exactly once.
func (c *Cache) StoreSignInToken(ctx context.Context, token, email string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSignInTokenTTL
	}

	key := signinTokenKeyPrefix + hashToken(token)
	if err := c.client.Set(ctx, key, email, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// ConsumeSignInToken atomically retrieves and deletes a sign-in token,
// returning the email it was issued for. A second consume of the same
// token returns ErrTokenNotFound; links are single use.
func (c *Cache) ConsumeSignInToken(ctx context.Context, token string) (string, error) {
	key := signinTokenKeyPrefix + hashToken(token)

	email, err := c.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("redis getdel failed: %w", err)
	}

	return email, nil
}
