package service

import (
	"context"
	"sync"
	"time"

	"github.com/gatepost/gatepost/internal/cache"
	"github.com/gatepost/gatepost/internal/model"
	"github.com/gatepost/gatepost/internal/repository"
)

// ============================================================================
// In-memory fakes shared by the service tests
// ============================================================================

type fakeStore struct {
	mu        sync.Mutex
	requests  map[string]*model.AccessRequest // by ID
	users     map[string]*model.User          // by email
	createErr error
	updateErr error
	upsertErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[string]*model.AccessRequest),
		users:    make(map[string]*model.User),
	}
}

func (f *fakeStore) CreateAccessRequest(_ context.Context, req *model.AccessRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.requests {
		if existing.Email == req.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeStore) ListAccessRequests(_ context.Context) ([]*model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*model.AccessRequest, 0, len(f.requests))
	for _, req := range f.requests {
		clone := *req
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeStore) UpdateAccessRequestStatus(_ context.Context, id string, status model.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	req, ok := f.requests[id]
	if !ok {
		return repository.ErrRequestNotFound
	}
	req.Status = status
	return nil
}

func (f *fakeStore) UpsertUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if existing, ok := f.users[user.Email]; ok {
		clone := *existing
		return &clone, nil
	}
	clone := *user
	f.users[user.Email] = &clone
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) GetLatestAccessRequestByEmail(_ context.Context, email string) (*model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.AccessRequest
	for _, req := range f.requests {
		if req.Email != email {
			continue
		}
		if latest == nil || req.CreatedAt.After(latest.CreatedAt) {
			latest = req
		}
	}
	if latest == nil {
		return nil, repository.ErrRequestNotFound
	}
	clone := *latest
	return &clone, nil
}

type fakeTokenStore struct {
	mu       sync.Mutex
	tokens   map[string]string // token -> email
	sessions map[string]string // token -> email
	storeErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		tokens:   make(map[string]string),
		sessions: make(map[string]string),
	}
}

func (f *fakeTokenStore) StoreSignInToken(_ context.Context, token, email string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.tokens[token] = email
	return nil
}

func (f *fakeTokenStore) ConsumeSignInToken(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[token]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	delete(f.tokens, token)
	return email, nil
}

func (f *fakeTokenStore) CreateUserSession(_ context.Context, token, email string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = email
	return nil
}

func (f *fakeTokenStore) GetUserSession(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.sessions[token]
	if !ok {
		return "", cache.ErrSessionNotFound
	}
	return email, nil
}

func (f *fakeTokenStore) DestroyUserSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentLink
	sendErr error
}

type sentLink struct {
	Email string
	URL   string
}

func (f *fakeSender) SendSignInLink(email, linkURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentLink{Email: email, URL: linkURL})
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
