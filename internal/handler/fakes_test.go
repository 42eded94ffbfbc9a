package handler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gatepost/gatepost/internal/cache"
	"github.com/gatepost/gatepost/internal/model"
	"github.com/gatepost/gatepost/internal/repository"
)

// fakeStore is an in-memory store backing both the request lifecycle
// and the sign-in lookups in handler tests.
type fakeStore struct {
	mu       sync.Mutex
	requests map[string]*model.AccessRequest
	users    map[string]*model.User

	createErr  error
	listErr    error
	upsertErr  error
	getUserErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[string]*model.AccessRequest),
		users:    make(map[string]*model.User),
	}
}

func (f *fakeStore) CreateAccessRequest(ctx context.Context, req *model.AccessRequest) error {
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
	f.requests[req.ID] = req
	return nil
}

func (f *fakeStore) ListAccessRequests(ctx context.Context) ([]*model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*model.AccessRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) UpdateAccessRequestStatus(ctx context.Context, id string, status model.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return repository.ErrRequestNotFound
	}
	req.Status = status
	return nil
}

func (f *fakeStore) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if existing, ok := f.users[user.Email]; ok {
		return existing, nil
	}
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetLatestAccessRequestByEmail(ctx context.Context, email string) (*model.AccessRequest, error) {
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
	return latest, nil
}

// fakeTokenStore mimics the Redis token and session storage.
type fakeTokenStore struct {
	mu       sync.Mutex
	tokens   map[string]string
	sessions map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		tokens:   make(map[string]string),
		sessions: make(map[string]string),
	}
}

func (f *fakeTokenStore) StoreSignInToken(ctx context.Context, token, email string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = email
	return nil
}

func (f *fakeTokenStore) ConsumeSignInToken(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[token]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	delete(f.tokens, token)
	return email, nil
}

func (f *fakeTokenStore) CreateUserSession(ctx context.Context, token, email string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = email
	return nil
}

func (f *fakeTokenStore) GetUserSession(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.sessions[token]
	if !ok {
		return "", cache.ErrSessionNotFound
	}
	return email, nil
}

func (f *fakeTokenStore) DestroyUserSession(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

// fakeSender records outbound sign-in links.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentLink
	sendErr error
}

type sentLink struct {
	email string
	link  string
}

func (f *fakeSender) SendSignInLink(email, linkURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentLink{email: email, link: linkURL})
	return nil
}

var errBoom = errors.New("boom")
