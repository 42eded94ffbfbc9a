//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/gatepost/gatepost/internal/testutil"
)

func TestIntegrationUsers_UpsertIdempotent(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("upsert")
	first := testutil.NewTestUser(t, email)

	stored, err := repo.UpsertUser(ctx, first)
	if err != nil {
		t.Fatalf("UpsertUser (first) failed: %v", err)
	}
	if stored.ID != first.ID {
		t.Errorf("ID mismatch: got %q, want %q", stored.ID, first.ID)
	}

	// Second upsert with a fresh ID must not replace or duplicate the row.
	second := testutil.NewTestUser(t, email)
	second.ID = testutil.UniqueID("user")

	stored, err = repo.UpsertUser(ctx, second)
	if err != nil {
		t.Fatalf("UpsertUser (second) failed: %v", err)
	}
	if stored.ID != first.ID {
		t.Errorf("re-approval replaced the user row: got %q, want %q", stored.ID, first.ID)
	}

	var count int
	err = repo.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", email).Scan(&count)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 user row, got %d", count)
	}
}

func TestIntegrationUsers_GetByEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("get")
	user := testutil.NewTestUser(t, email)
	if _, err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if retrieved.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, email)
	}
	if retrieved.IsAdmin {
		t.Error("users created via approval must not be admins")
	}

	_, err = repo.GetUserByEmail(ctx, testutil.UniqueEmail("absent"))
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}

	return ctx, repo
}
