// Package model defines domain entities for the application.
package model

import "time"

// RequestStatus represents the review status of an access request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// IsValid checks if the status is one of the persisted values.
func (s RequestStatus) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// AccessRequest represents one email's request for entry.
// Requests are created pending via the public form and only move
// forward through the admin review flow; they are never deleted.
type AccessRequest struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// IsPending returns true if the request has not been reviewed yet.
func (r *AccessRequest) IsPending() bool {
	return r.Status == StatusPending
}
