package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gatepost/gatepost/internal/auth"
	"github.com/gatepost/gatepost/internal/cache"
	"github.com/gatepost/gatepost/internal/metrics"
	"github.com/gatepost/gatepost/internal/model"
	"github.com/gatepost/gatepost/internal/repository"
)

// Sign-in errors.
var (
	ErrInvalidToken = errors.New("invalid or expired sign-in token")
	ErrNotEntitled  = errors.New("email is not entitled to the dashboard")
)

// ResolveOutcome is the status taxonomy for the resend-link path.
type ResolveOutcome string

const (
	OutcomeSent     ResolveOutcome = "sent"
	OutcomePending  ResolveOutcome = "pending"
	OutcomeRejected ResolveOutcome = "rejected"
	OutcomeNotFound ResolveOutcome = "not_found"
)

// ResolveResult pairs an outcome with its user-facing message.
type ResolveResult struct {
	Outcome ResolveOutcome
	Message string
}

// UserStore is the persistence surface the sign-in flow needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetLatestAccessRequestByEmail(ctx context.Context, email string) (*model.AccessRequest, error)
}

// TokenStore holds sign-in tokens and user sessions.
type TokenStore interface {
	StoreSignInToken(ctx context.Context, token, email string, ttl time.Duration) error
	ConsumeSignInToken(ctx context.Context, token string) (string, error)
	CreateUserSession(ctx context.Context, token, email string, ttl time.Duration) error
	GetUserSession(ctx context.Context, token string) (string, error)
	DestroyUserSession(ctx context.Context, token string) error
}

// LinkSender delivers a sign-in link URL to an email address.
type LinkSender interface {
	SendSignInLink(email, linkURL string) error
}

// SignInService owns passwordless sign-in: minting and consuming link
// tokens, user sessions, and the entitlement gate.
type SignInService struct {
	users      UserStore
	tokens     TokenStore
	sender     LinkSender
	siteURL    string
	tokenTTL   time.Duration
	sessionTTL time.Duration
	metrics    metrics.Recorder
}

// SignInConfig holds construction options for SignInService.
type SignInConfig struct {
	SiteURL    string
	TokenTTL   time.Duration
	SessionTTL time.Duration
	Metrics    metrics.Recorder
}

// NewSignInService creates a new SignInService.
func NewSignInService(users UserStore, tokens TokenStore, sender LinkSender, cfg SignInConfig) *SignInService {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = cache.DefaultSignInTokenTTL
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = cache.DefaultUserSessionTTL
	}
	return &SignInService{
		users:      users,
		tokens:     tokens,
		sender:     sender,
		siteURL:    strings.TrimSuffix(cfg.SiteURL, "/"),
		tokenTTL:   tokenTTL,
		sessionTTL: sessionTTL,
		metrics:    recorder,
	}
}

// IssueLink mints a single-use sign-in token for the email, stores it,
// and sends the callback URL by email. Exactly one issuance per call.
func (s *SignInService) IssueLink(ctx context.Context, email string) error {
	token, err := auth.GenerateToken()
	if err != nil {
		return fmt.Errorf("generate sign-in token: %w", err)
	}

	if err := s.tokens.StoreSignInToken(ctx, token, email, s.tokenTTL); err != nil {
		return fmt.Errorf("store sign-in token: %w", err)
	}

	linkURL := fmt.Sprintf("%s/auth/callback?token=%s", s.siteURL, url.QueryEscape(token))
	if err := s.sender.SendSignInLink(email, linkURL); err != nil {
		return fmt.Errorf("send sign-in link: %w", err)
	}

	s.metrics.IncLinkIssued()
	return nil
}

// Resolve implements the resend-link path: an approved user gets a fresh
// link; otherwise the most recent request's status decides. An approved
// request whose users row is missing still gets a link, the approval is
// what counts here; the users row is only repaired by a re-approval.
func (s *SignInService) Resolve(ctx context.Context, email string) (*ResolveResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		if err := s.IssueLink(ctx, email); err != nil {
			return nil, err
		}
		return &ResolveResult{
			Outcome: OutcomeSent,
			Message: "Sign-in link sent",
		}, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	req, err := s.users.GetLatestAccessRequestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return &ResolveResult{
				Outcome: OutcomeNotFound,
				Message: "No request found for this email",
			}, nil
		}
		return nil, fmt.Errorf("lookup access request: %w", err)
	}

	switch req.Status {
	case model.StatusRejected:
		return &ResolveResult{
			Outcome: OutcomeRejected,
			Message: "Your request was rejected",
		}, nil
	case model.StatusApproved:
		// Approved but the users row is missing (the upsert failed
		// after the status was written). The approval stands, so a
		// fresh link is still sent.
		if err := s.IssueLink(ctx, email); err != nil {
			return nil, err
		}
		return &ResolveResult{
			Outcome: OutcomeSent,
			Message: "Sign-in link sent",
		}, nil
	default:
		return &ResolveResult{
			Outcome: OutcomePending,
			Message: "Your request is awaiting review",
		}, nil
	}
}

// Consume exchanges a valid sign-in token for a user session token.
// Tokens are single use; a replay returns ErrInvalidToken.
func (s *SignInService) Consume(ctx context.Context, token string) (email, sessionToken string, err error) {
	if !auth.ValidateTokenFormat(token) {
		return "", "", ErrInvalidToken
	}

	email, err = s.tokens.ConsumeSignInToken(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrTokenNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", fmt.Errorf("consume sign-in token: %w", err)
	}

	sessionToken, err = auth.GenerateToken()
	if err != nil {
		return "", "", fmt.Errorf("generate session token: %w", err)
	}

	if err := s.tokens.CreateUserSession(ctx, sessionToken, email, s.sessionTTL); err != nil {
		return "", "", fmt.Errorf("create user session: %w", err)
	}

	s.metrics.IncLinkConsumed()
	return email, sessionToken, nil
}

// CheckEntitlement reports whether an authenticated email may reach the
// dashboard. Checked on every entry, never cached, because approval can
// change between link issuance and link use.
func (s *SignInService) CheckEntitlement(ctx context.Context, email string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncEntitlementDenied()
			return ErrNotEntitled
		}
		return fmt.Errorf("check entitlement: %w", err)
	}
	return nil
}

// SessionEmail resolves a user session token to its email.
func (s *SignInService) SessionEmail(ctx context.Context, sessionToken string) (string, error) {
	email, err := s.tokens.GetUserSession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return email, nil
}

// SignOut destroys a user session server-side.
func (s *SignInService) SignOut(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if err := s.tokens.DestroyUserSession(ctx, sessionToken); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
