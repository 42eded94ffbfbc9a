package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatepost/gatepost/internal/auth"
	"github.com/gatepost/gatepost/internal/handler/dto"
	"github.com/gatepost/gatepost/internal/service"
)

// AuthHandler serves the passwordless sign-in surface: resending links,
// the email callback, sign-out, and the entitlement-gated dashboard.
type AuthHandler struct {
	svc        *service.SignInService
	sessionTTL time.Duration
	secure     bool
	logger     *slog.Logger
}

// AuthHandlerConfig holds construction options for AuthHandler.
type AuthHandlerConfig struct {
	SessionTTL time.Duration
	Secure     bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.SignInService, cfg AuthHandlerConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		sessionTTL: cfg.SessionTTL,
		secure:     cfg.Secure,
		logger:     logger,
	}
}

// ResendLink handles POST /auth/resend-link.
// The response status field tells the visitor where their email stands:
// sent, pending, rejected, or not_found. Lookup failures collapse to a
// plain error status so the page can ask them to retry.
func (h *AuthHandler) ResendLink(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Email == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "Email is required")
		return
	}

	result, err := h.svc.Resolve(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("resend link failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ResendLinkResponse{
			Status:  "error",
			Message: "Something went wrong. Please try again.",
		})
		return
	}

	h.logger.Info("resend_link_resolved",
		"outcome", string(result.Outcome),
	)

	writeJSON(w, http.StatusOK, dto.ResendLinkResponse{
		Status:  string(result.Outcome),
		Message: result.Message,
	})
}

// Callback handles GET /auth/callback?token={token}.
// A valid token trades for a session cookie and a redirect to the
// dashboard. Invalid, expired, and replayed tokens all land on the same
// error page; the token is single use, so refreshing the callback URL
// after a success is a replay.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	_, sessionToken, err := h.svc.Consume(r.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidToken) {
			h.logger.Error("callback failed", "error", err)
		}
		http.Redirect(w, r, "/auth/error?error=invalid_token", http.StatusFound)
		return
	}

	http.SetCookie(w, auth.NewUserSessionCookie(sessionToken, h.sessionTTL, h.secure))
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// SignOut handles POST /auth/signout.
// Destroys the server-side session and clears the cookie. Succeeds even
// without a session so the client can always reset its state.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.UserSessionCookie); err == nil && cookie.Value != "" {
		if err := h.svc.SignOut(r.Context(), cookie.Value); err != nil {
			h.logger.Error("sign out failed", "error", err)
		}
	}

	http.SetCookie(w, auth.ExpireCookie(auth.UserSessionCookie, h.secure))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Dashboard handles GET /api/v1/dashboard.
// The session middleware has already resolved the email; entitlement is
// re-checked against the users table on every entry, so revoking a user
// row locks them out on their next request even with a live session.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	email := auth.SessionEmailFromContext(r.Context())
	if email == "" {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	if err := h.svc.CheckEntitlement(r.Context(), email); err != nil {
		if errors.Is(err, service.ErrNotEntitled) {
			h.evictSession(w, r)
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":    "Your email is not approved for access",
				"code":     "NOT_APPROVED",
				"redirect": "/?error=not_approved",
			})
			return
		}
		h.logger.Error("entitlement check failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardResponse{
		Email:    email,
		Entitled: true,
	})
}

// evictSession destroys the caller's session and clears the cookie.
// Used when an authenticated session fails the entitlement gate.
func (h *AuthHandler) evictSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.UserSessionCookie); err == nil && cookie.Value != "" {
		if err := h.svc.SignOut(r.Context(), cookie.Value); err != nil {
			h.logger.Error("session eviction failed", "error", err)
		}
	}
	http.SetCookie(w, auth.ExpireCookie(auth.UserSessionCookie, h.secure))
}

// writeError writes an error response.
func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
