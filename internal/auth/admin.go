package auth

import "crypto/subtle"

// AdminSessionValue is the literal marker stored in the admin session
// cookie after a successful login. The gate is a shared static secret,
// not a per-session revocable token; acceptable for a single admin actor.
const AdminSessionValue = "authenticated"

// AdminVerifier checks the shared admin secret. Modeled as an interface
// so a stricter credential scheme can be swapped in without changing the
// login contract.
type AdminVerifier interface {
	Verify(password string) bool
}

// StaticSecretVerifier compares the supplied password against a single
// configured secret by equality.
type StaticSecretVerifier struct {
	secret string
}

// NewStaticSecretVerifier creates a verifier for the configured secret.
func NewStaticSecretVerifier(secret string) *StaticSecretVerifier {
	return &StaticSecretVerifier{secret: secret}
}

// Verify reports whether password matches the configured secret.
// Constant-time comparison avoids leaking the match length.
func (v *StaticSecretVerifier) Verify(password string) bool {
	if v.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(v.secret)) == 1
}

// AuthorizeAdminMarker reports whether a session cookie value proves a
// prior successful login. Must wrap every admin-only operation.
func AuthorizeAdminMarker(marker string) bool {
	return subtle.ConstantTimeCompare([]byte(marker), []byte(AdminSessionValue)) == 1
}
