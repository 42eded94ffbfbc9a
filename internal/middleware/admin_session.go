package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gatepost/gatepost/internal/auth"
)

// AdminAuth returns a middleware that gates admin-only operations on the
// admin session cookie. The marker must exactly equal the authenticated
// value; anything else is a 401 and the client falls back to the login
// prompt. No partial data is ever served to an unauthenticated caller.
func AdminAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.AdminSessionCookie)
			if err != nil || !auth.AuthorizeAdminMarker(cookie.Value) {
				logger.Warn("admin authorization failed",
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized writes the 401 response shared by both session gates.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
