package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gatepost/gatepost/internal/metrics"
	"github.com/gatepost/gatepost/internal/model"
)

type fakeIssuer struct {
	calls    int
	issueErr error
}

func (f *fakeIssuer) IssueLink(_ context.Context, _ string) error {
	f.calls++
	return f.issueErr
}

func TestSubmit(t *testing.T) {
	store := newFakeStore()
	svc := NewAccessRequestService(store, &fakeIssuer{}, nil)

	req, err := svc.Submit(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if req.Status != model.StatusPending {
		t.Errorf("submit must force pending status, got %q", req.Status)
	}
	if req.ID == "" {
		t.Error("expected generated ID")
	}
	if req.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSubmit_NormalizesEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewAccessRequestService(store, &fakeIssuer{}, nil)

	req, err := svc.Submit(context.Background(), "  User@X.Com ")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Email != "user@x.com" {
		t.Errorf("expected normalized email, got %q", req.Email)
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	store := newFakeStore()
	recorder := metrics.NewInMemory()
	svc := NewAccessRequestService(store, &fakeIssuer{}, recorder)

	if _, err := svc.Submit(context.Background(), "b@x.com"); err != nil {
		t.Fatalf("Submit (first) failed: %v", err)
	}

	_, err := svc.Submit(context.Background(), "b@x.com")
	if !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("expected ErrAlreadyRequested, got %v", err)
	}

	// Only one row persists.
	if len(store.requests) != 1 {
		t.Errorf("expected exactly 1 stored request, got %d", len(store.requests))
	}

	snap := recorder.Snapshot()
	if snap.RequestsSubmitted != 1 || snap.RequestsDuplicate != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestSubmit_InvalidEmail(t *testing.T) {
	svc := NewAccessRequestService(newFakeStore(), &fakeIssuer{}, nil)

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"no_at", "nope"},
		{"no_domain", "a@"},
		{"no_tld", "a@x"},
		{"spaces", "a b@x.com"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), test.email)
			if !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("expected ErrInvalidEmail for %q, got %v", test.email, err)
			}
		})
	}
}

func TestSetStatus_Approve(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{}
	recorder := metrics.NewInMemory()
	svc := NewAccessRequestService(store, issuer, recorder)

	req, err := svc.Submit(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	result, err := svc.SetStatus(context.Background(), req.ID, req.Email, model.StatusApproved)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if result.Status != model.StatusApproved {
		t.Errorf("unexpected result status: %q", result.Status)
	}
	if store.requests[req.ID].Status != model.StatusApproved {
		t.Error("status row not updated")
	}
	if _, ok := store.users["a@x.com"]; !ok {
		t.Error("approval must upsert the user row")
	}
	if issuer.calls != 1 {
		t.Errorf("expected exactly one link issuance, got %d", issuer.calls)
	}

	snap := recorder.Snapshot()
	if snap.RequestsApproved != 1 {
		t.Errorf("expected approved counter 1, got %d", snap.RequestsApproved)
	}
}

func TestSetStatus_NormalizesEmail(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{}
	svc := NewAccessRequestService(store, issuer, nil)

	req, err := svc.Submit(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Admins type the email into the approval payload; casing must not
	// fork the user row away from the one sign-in looks up.
	result, err := svc.SetStatus(context.Background(), req.ID, "  A@X.com ", model.StatusApproved)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if result.Email != "a@x.com" {
		t.Errorf("expected normalized email in result, got %q", result.Email)
	}
	if len(store.users) != 1 {
		t.Fatalf("expected exactly 1 user row, got %d", len(store.users))
	}
	if _, ok := store.users["a@x.com"]; !ok {
		t.Error("user row must be keyed by the normalized email")
	}
}

func TestSetStatus_ReApproveIdempotent(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{}
	svc := NewAccessRequestService(store, issuer, nil)

	req, _ := svc.Submit(context.Background(), "a@x.com")
	firstUserID := ""

	for i := 0; i < 3; i++ {
		if _, err := svc.SetStatus(context.Background(), req.ID, req.Email, model.StatusApproved); err != nil {
			t.Fatalf("SetStatus (%d) failed: %v", i, err)
		}
		if firstUserID == "" {
			firstUserID = store.users["a@x.com"].ID
		}
	}

	if len(store.users) != 1 {
		t.Errorf("expected exactly 1 user row, got %d", len(store.users))
	}
	if store.users["a@x.com"].ID != firstUserID {
		t.Error("re-approval must not replace the user row")
	}
	// One issuance call per approval invocation.
	if issuer.calls != 3 {
		t.Errorf("expected 3 issuance calls, got %d", issuer.calls)
	}
}

func TestSetStatus_Reject(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{}
	svc := NewAccessRequestService(store, issuer, nil)

	req, _ := svc.Submit(context.Background(), "c@x.com")

	result, err := svc.SetStatus(context.Background(), req.ID, req.Email, model.StatusRejected)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if result.Status != model.StatusRejected {
		t.Errorf("unexpected result status: %q", result.Status)
	}
	if result.Message == "" || result.Email != "c@x.com" {
		t.Error("rejection must confirm with the email")
	}
	if len(store.users) != 0 {
		t.Error("rejection must never create a user row")
	}
	if issuer.calls != 0 {
		t.Error("rejection must not issue a link")
	}
}

func TestSetStatus_UpsertFails(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{}
	svc := NewAccessRequestService(store, issuer, nil)

	req, _ := svc.Submit(context.Background(), "a@x.com")
	store.upsertErr = errors.New("boom")

	_, err := svc.SetStatus(context.Background(), req.ID, req.Email, model.StatusApproved)
	if !errors.Is(err, ErrUserAddFailed) {
		t.Fatalf("expected ErrUserAddFailed, got %v", err)
	}

	// The link is never sent when the upsert fails.
	if issuer.calls != 0 {
		t.Errorf("expected no issuance calls, got %d", issuer.calls)
	}
	// The status row stays approved; no rollback.
	if store.requests[req.ID].Status != model.StatusApproved {
		t.Error("status row must remain approved")
	}
}

func TestSetStatus_LinkSendFails(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{issueErr: errors.New("smtp down")}
	svc := NewAccessRequestService(store, issuer, nil)

	req, _ := svc.Submit(context.Background(), "a@x.com")

	_, err := svc.SetStatus(context.Background(), req.ID, req.Email, model.StatusApproved)
	if !errors.Is(err, ErrLinkNotSent) {
		t.Fatalf("expected ErrLinkNotSent, got %v", err)
	}

	// Partial success: status updated and user row present.
	if store.requests[req.ID].Status != model.StatusApproved {
		t.Error("status row must remain approved")
	}
	if _, ok := store.users["a@x.com"]; !ok {
		t.Error("user row must survive a failed send")
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewAccessRequestService(store, &fakeIssuer{}, nil)

	req, _ := svc.Submit(context.Background(), "a@x.com")

	_, err := svc.SetStatus(context.Background(), req.ID, req.Email, model.RequestStatus("archived"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if store.requests[req.ID].Status != model.StatusPending {
		t.Error("invalid status must not be persisted")
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	svc := NewAccessRequestService(newFakeStore(), &fakeIssuer{}, nil)

	_, err := svc.SetStatus(context.Background(), "missing", "a@x.com", model.StatusApproved)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	store := newFakeStore()
	svc := NewAccessRequestService(store, &fakeIssuer{}, nil)

	if _, err := svc.Submit(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "b@x.com"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	requests, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(requests) != 2 {
		t.Errorf("expected 2 requests, got %d", len(requests))
	}
}
