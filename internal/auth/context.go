package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionEmailKey is the context key for the session's email.
	sessionEmailKey contextKey = "session_email"
)

// ContextWithSessionEmail adds the authenticated email to the context.
func ContextWithSessionEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, sessionEmailKey, email)
}

// SessionEmailFromContext retrieves the authenticated email from the
// context. Returns empty string if the session middleware has not run.
func SessionEmailFromContext(ctx context.Context) string {
	email, ok := ctx.Value(sessionEmailKey).(string)
	if !ok {
		return ""
	}
	return email
}
