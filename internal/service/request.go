// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatepost/gatepost/internal/metrics"
	"github.com/gatepost/gatepost/internal/model"
	"github.com/gatepost/gatepost/internal/repository"
)

// Service errors.
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrAlreadyRequested = errors.New("email already requested access")
	ErrInvalidStatus    = errors.New("invalid request status")
	ErrRequestNotFound  = errors.New("access request not found")
	ErrUserAddFailed    = errors.New("failed to add approved user")
	ErrLinkNotSent      = errors.New("approved but sign-in link not sent")
)

// Pragmatic format check; the mailbox is the real validator.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxEmailLength = 254

// RequestStore is the persistence surface the lifecycle needs.
type RequestStore interface {
	CreateAccessRequest(ctx context.Context, req *model.AccessRequest) error
	ListAccessRequests(ctx context.Context) ([]*model.AccessRequest, error)
	UpdateAccessRequestStatus(ctx context.Context, id string, status model.RequestStatus) error
	UpsertUser(ctx context.Context, user *model.User) (*model.User, error)
}

// LinkIssuer triggers passwordless sign-in link delivery.
type LinkIssuer interface {
	IssueLink(ctx context.Context, email string) error
}

// AccessRequestService implements the access request lifecycle: public
// submission, admin listing, and the approve/reject status transitions
// with their side effects.
type AccessRequestService struct {
	store   RequestStore
	links   LinkIssuer
	metrics metrics.Recorder
}

// NewAccessRequestService creates a new AccessRequestService.
func NewAccessRequestService(store RequestStore, links LinkIssuer, recorder metrics.Recorder) *AccessRequestService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccessRequestService{
		store:   store,
		links:   links,
		metrics: recorder,
	}
}

// Submit records a new access request with status forced to pending.
// A duplicate email maps to ErrAlreadyRequested; the unique constraint
// in the store is the guard, so concurrent submissions cannot race past it.
func (s *AccessRequestService) Submit(ctx context.Context, email string) (*model.AccessRequest, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	req := &model.AccessRequest{
		ID:        ulid.Make().String(),
		Email:     email,
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateAccessRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRequestDuplicate()
			return nil, ErrAlreadyRequested
		}
		return nil, fmt.Errorf("submit access request: %w", err)
	}

	s.metrics.IncRequestSubmitted()
	return req, nil
}

// List returns all access requests, newest first. The admin UI splits
// the result into pending/approved/rejected purely for display.
func (s *AccessRequestService) List(ctx context.Context) ([]*model.AccessRequest, error) {
	requests, err := s.store.ListAccessRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	return requests, nil
}

// StatusResult reports the outcome of a status change.
type StatusResult struct {
	Email   string
	Status  model.RequestStatus
	Message string
}

// SetStatus updates a request's status by ID. The caller must already be
// authorized. On approval the approved user is upserted first and the
// sign-in link issued second; the status row is never rolled back once
// written, so downstream failures surface as distinct partial outcomes:
//
//   - upsert fails: ErrUserAddFailed, no link is sent
//   - upsert succeeds, send fails: ErrLinkNotSent, status stays approved
//
// Rejection is a pure status update with no side effects.
func (s *AccessRequestService) SetStatus(ctx context.Context, id, email string, status model.RequestStatus) (*StatusResult, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	// The email arrives from the admin payload, not the stored row, so
	// it gets the same normalization as submission. Otherwise an upsert
	// keyed on a differently-cased email would create a second users
	// row the sign-in path can never match.
	email = normalizeEmail(email)

	if err := s.store.UpdateAccessRequestStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("update request status: %w", err)
	}

	switch status {
	case model.StatusApproved:
		return s.completeApproval(ctx, email)
	case model.StatusRejected:
		s.metrics.IncRequestRejected()
		return &StatusResult{
			Email:   email,
			Status:  model.StatusRejected,
			Message: fmt.Sprintf("Request from %s rejected", email),
		}, nil
	default:
		return &StatusResult{Email: email, Status: status, Message: "Request updated"}, nil
	}
}

// completeApproval runs the approval side effects after the status row
// has been written.
func (s *AccessRequestService) completeApproval(ctx context.Context, email string) (*StatusResult, error) {
	user := &model.User{
		ID:        ulid.Make().String(),
		Email:     email,
		IsAdmin:   false,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserAddFailed, err)
	}

	s.metrics.IncRequestApproved()

	if err := s.links.IssueLink(ctx, email); err != nil {
		s.metrics.IncLinkSendFailed()
		return nil, fmt.Errorf("%w: %s", ErrLinkNotSent, err)
	}

	return &StatusResult{
		Email:   email,
		Status:  model.StatusApproved,
		Message: fmt.Sprintf("Sign-in link sent to %s", email),
	}, nil
}

// normalizeEmail lowercases and trims an address. Entitlement and
// uniqueness both rely on string equality of emails, so the stored form
// must be canonical.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail applies the public form's format rules.
func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
