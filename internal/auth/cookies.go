package auth

import (
	"net/http"
	"time"
)

// Cookie names for the two session domains.
const (
	AdminSessionCookie = "admin_session"
	UserSessionCookie  = "user_session"
)

// NewAdminSessionCookie builds the admin session cookie set on login.
// HTTP-only, SameSite=Lax, Secure in production, fixed validity window.
func NewAdminSessionCookie(ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AdminSessionCookie,
		Value:    AdminSessionValue,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewUserSessionCookie builds the passwordless user session cookie.
func NewUserSessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     UserSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpireCookie returns a copy of the cookie cleared for the client.
// Clearing is purely client-observable for the admin marker; the user
// session is additionally destroyed server-side by the caller.
func ExpireCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // serialized as Max-Age=0
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
