package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatepost/gatepost/internal/auth"
	"github.com/gatepost/gatepost/internal/handler/dto"
	"github.com/gatepost/gatepost/internal/model"
	"github.com/gatepost/gatepost/internal/service"
)

// AdminHandler serves the admin login gate and the access request
// review endpoints behind it.
type AdminHandler struct {
	svc        *service.AccessRequestService
	verifier   auth.AdminVerifier
	sessionTTL time.Duration
	secure     bool
	logger     *slog.Logger
}

// AdminHandlerConfig holds construction options for AdminHandler.
type AdminHandlerConfig struct {
	Verifier   auth.AdminVerifier
	SessionTTL time.Duration
	Secure     bool
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AccessRequestService, cfg AdminHandlerConfig, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:        svc,
		verifier:   cfg.Verifier,
		sessionTTL: cfg.SessionTTL,
		secure:     cfg.Secure,
		logger:     logger,
	}
}

// Login handles POST /admin/login.
// A correct password sets the admin session cookie; a wrong one is a
// 401 with no cookie. The response body never distinguishes which part
// of the credential was wrong.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.verifier.Verify(req.Password) {
		h.logger.Warn("admin login failed",
			slog.String("ip", r.RemoteAddr),
		)
		h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password")
		return
	}

	http.SetCookie(w, auth.NewAdminSessionCookie(h.sessionTTL, h.secure))

	h.logger.Info("admin login succeeded")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles POST /admin/logout.
// Clearing the cookie is the whole logout; the marker carries no
// server-side state to destroy.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpireCookie(auth.AdminSessionCookie, h.secure))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListRequests handles GET /admin/requests.
// Returns every access request newest first; the admin UI buckets them
// by status client-side.
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("list requests failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load access requests")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRequestListResponse(requests))
}

// UpdateStatus handles PATCH /admin/requests.
// Approval upserts the user row and emails a sign-in link; either side
// effect can fail after the status row is written, and each partial
// outcome gets its own error body so the admin knows what to retry.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.ID == "" || req.Email == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Fields 'id' and 'email' are required")
		return
	}

	result, err := h.svc.SetStatus(r.Context(), req.ID, req.Email, model.RequestStatus(req.Status))
	if err != nil {
		h.handleStatusError(w, req.Email, err)
		return
	}

	h.logger.Info("request_status_updated",
		"request_id", req.ID,
		"status", string(result.Status),
	)

	writeJSON(w, http.StatusOK, dto.UpdateStatusResponse{
		Success: true,
		Message: result.Message,
		Email:   result.Email,
	})
}

// handleStatusError maps status change errors to HTTP responses. The
// two approval side effect failures return 500 with success=false so
// the admin UI surfaces them without treating the status row as rolled
// back.
func (h *AdminHandler) handleStatusError(w http.ResponseWriter, email string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		h.writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be approved or rejected")
	case errors.Is(err, service.ErrRequestNotFound):
		h.writeError(w, http.StatusNotFound, "REQUEST_NOT_FOUND", "Access request not found")
	case errors.Is(err, service.ErrUserAddFailed):
		h.logger.Error("approval user upsert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.UpdateStatusResponse{
			Success: false,
			Error:   "Failed to add approved user",
			Email:   email,
		})
	case errors.Is(err, service.ErrLinkNotSent):
		h.logger.Error("approval link send failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.UpdateStatusResponse{
			Success: false,
			Error:   "Request approved but the sign-in link could not be sent",
			Email:   email,
		})
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *AdminHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
