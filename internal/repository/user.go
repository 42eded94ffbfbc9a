package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gatepost/gatepost/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// GetUserByEmail retrieves an approved user by email address.
// This lookup is the entitlement check for dashboard access.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, is_admin, created_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.IsAdmin,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// UpsertUser inserts an approved user keyed on email, or leaves the
// existing row untouched. Re-approving the same email is idempotent and
// never duplicates a row. Returns the stored row.
func (r *Repository) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, is_admin, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.IsAdmin,
		user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	// Reread so callers always see the canonical row, whether this call
	// inserted it or an earlier approval did.
	stored, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to read back upserted user: %w", err)
	}

	return stored, nil
}
