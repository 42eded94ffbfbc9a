package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gatepost/gatepost/internal/model"
)

// Common errors for access request repository operations.
var (
	ErrRequestNotFound = errors.New("access request not found")
	ErrEmailExists     = errors.New("email already requested")
)

// CreateAccessRequest inserts a new access request.
// The uniqueness constraint on email is the sole guard against duplicate
// requests under concurrent submissions; a violation maps to ErrEmailExists.
func (r *Repository) CreateAccessRequest(ctx context.Context, req *model.AccessRequest) error {
	query := `
		INSERT INTO access_requests (id, email, status, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.Email,
		req.Status,
		req.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create access request: %w", err)
	}

	return nil
}

// ListAccessRequests returns all access requests, newest first.
// The admin UI partitions the result client-side; no pagination is applied.
func (r *Repository) ListAccessRequests(ctx context.Context) ([]*model.AccessRequest, error) {
	query := `
		SELECT id, email, status, created_at
		FROM access_requests
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list access requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*model.AccessRequest, 0)
	for rows.Next() {
		var req model.AccessRequest
		if err := rows.Scan(&req.ID, &req.Email, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan access request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access requests: %w", err)
	}

	return requests, nil
}

// GetAccessRequestByID retrieves a single access request by its ID.
func (r *Repository) GetAccessRequestByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	query := `
		SELECT id, email, status, created_at
		FROM access_requests
		WHERE id = $1
	`

	var req model.AccessRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Email,
		&req.Status,
		&req.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get access request by ID: %w", err)
	}

	return &req, nil
}

// GetLatestAccessRequestByEmail retrieves the most recent access request
// for an email. Used by the resend-link resolution path.
func (r *Repository) GetLatestAccessRequestByEmail(ctx context.Context, email string) (*model.AccessRequest, error) {
	query := `
		SELECT id, email, status, created_at
		FROM access_requests
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var req model.AccessRequest
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&req.ID,
		&req.Email,
		&req.Status,
		&req.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get access request by email: %w", err)
	}

	return &req, nil
}

// UpdateAccessRequestStatus updates the status field of a request by ID.
// Only the status column changes; created_at and email are immutable.
func (r *Repository) UpdateAccessRequestStatus(ctx context.Context, id string, status model.RequestStatus) error {
	query := `
		UPDATE access_requests
		SET status = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update access request status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	return nil
}
