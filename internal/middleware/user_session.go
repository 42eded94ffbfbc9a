package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gatepost/gatepost/internal/auth"
)

// SessionResolver resolves a user session token to the email it
// authenticates.
type SessionResolver interface {
	SessionEmail(ctx context.Context, sessionToken string) (string, error)
}

// UserSession returns a middleware that requires a valid passwordless
// user session and injects the authenticated email into the request
// context. It proves identity only; entitlement is a separate check the
// handler performs against the users table on every entry.
func UserSession(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.UserSessionCookie)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			email, err := resolver.SessionEmail(r.Context(), cookie.Value)
			if err != nil {
				logger.Warn("user session rejected",
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeUnauthorized(w)
				return
			}

			ctx := auth.ContextWithSessionEmail(r.Context(), email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
