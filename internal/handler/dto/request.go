// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/gatepost/gatepost/internal/model"
)

// SubmitRequestRequest represents the request body for submitting an
// access request.
type SubmitRequestRequest struct {
	Email string `json:"email"`
}

// AccessRequestResponse represents an access request in API responses.
type AccessRequestResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestListResponse represents the admin listing of access requests.
type RequestListResponse struct {
	Requests []AccessRequestResponse `json:"requests"`
}

// AdminLoginRequest represents the request body for admin login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// UpdateStatusRequest represents the admin approve/reject request body.
type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// UpdateStatusResponse reports the outcome of an approve/reject action.
type UpdateStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResendLinkRequest represents the request body for the resend-link flow.
type ResendLinkRequest struct {
	Email string `json:"email"`
}

// ResendLinkResponse reports the resend-link outcome to the caller.
// Status is one of sent, pending, rejected, not_found, or error.
type ResendLinkResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DashboardResponse represents the gated dashboard payload.
type DashboardResponse struct {
	Email    string `json:"email"`
	Entitled bool   `json:"entitled"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToAccessRequestResponse converts an AccessRequest model to its DTO.
func ToAccessRequestResponse(req *model.AccessRequest) AccessRequestResponse {
	return AccessRequestResponse{
		ID:        req.ID,
		Email:     req.Email,
		Status:    string(req.Status),
		CreatedAt: req.CreatedAt,
	}
}

// ToRequestListResponse converts a slice of AccessRequests to the admin
// listing DTO. The requests slice is never nil in the response.
func ToRequestListResponse(requests []*model.AccessRequest) RequestListResponse {
	out := make([]AccessRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, ToAccessRequestResponse(req))
	}
	return RequestListResponse{Requests: out}
}
