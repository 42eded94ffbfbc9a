package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gatepost/gatepost/internal/handler/dto"
	"github.com/gatepost/gatepost/internal/service"
)

// RequestHandler handles the public access request endpoint.
type RequestHandler struct {
	svc    *service.AccessRequestService
	logger *slog.Logger
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(svc *service.AccessRequestService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		svc:    svc,
		logger: logger,
	}
}

// Submit handles POST /api/v1/requests.
// A duplicate email is reported as a conflict so the landing page can
// tell the visitor their earlier request is still on file.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	created, err := h.svc.Submit(r.Context(), req.Email)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("access_request_submitted",
		"request_id", created.ID,
	)

	writeJSON(w, http.StatusCreated, dto.ToAccessRequestResponse(created))
}

// handleServiceError maps service errors to HTTP responses.
func (h *RequestHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		h.writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "A valid email address is required")
	case errors.Is(err, service.ErrAlreadyRequested):
		h.writeError(w, http.StatusConflict, "ALREADY_REQUESTED", "An access request for this email already exists")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *RequestHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
