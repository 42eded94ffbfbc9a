// Package auth provides the two authorization contexts of the service:
// the shared-secret admin session and the passwordless user session.
// The two are deliberately independent; their entitlement rules and
// lifetimes differ entirely.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: gl_{secret}
// Example: gl_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// Sign-in tokens and user session tokens share this format. They are
// random capabilities, never derived from the email they authenticate.
const (
	TokenSecretLen = 32 // Secret length (hex encoded 16 bytes)
)

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^gl_([a-f0-9]{32})$`)
)

// GenerateToken creates a new opaque token from crypto/rand.
func GenerateToken() (string, error) {
	secretBytes := make([]byte, 16)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	return fmt.Sprintf("gl_%s", hex.EncodeToString(secretBytes)), nil
}

// ValidateTokenFormat checks if the token matches the expected format.
// Used at the callback boundary to reject garbage before touching Redis.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
