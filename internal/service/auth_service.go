package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nurpe/liftcare/internal/auth"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type TokenIssuer interface {
	Issue(principal model.Principal) (string, time.Time, error)
}

type SessionRegistry interface {
	Open(ctx context.Context, token string) (*auth.Session, error)
	Close(token string) error
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResult struct {
	Token     string      `json:"access_token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type AuthService struct {
	users    UserStore
	issuer   TokenIssuer
	sessions SessionRegistry
	activity ActivityRecorder
}

func NewAuthService(users UserStore, issuer TokenIssuer, sessions SessionRegistry, activity ActivityRecorder) *AuthService {
	return &AuthService{users: users, issuer: issuer, sessions: sessions, activity: activity}
}

// SignIn checks the password of an active user and opens a session for a fresh token.
// Unknown emails and wrong passwords fail the same way.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*SignInResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return nil, err
	}
	if !user.IsActive || user.PasswordHash == "" {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	principal := user.Principal()
	token, expiresAt, err := s.issuer.Issue(principal)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Open(ctx, token); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	record(ctx, s.activity, principal, "auth.signed_in", user.Email)
	return &SignInResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// SignOut clears the session behind token; the token is rejected afterwards.
func (s *AuthService) SignOut(ctx context.Context, principal model.Principal, token string) error {
	if err := s.sessions.Close(token); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	record(ctx, s.activity, principal, "auth.signed_out", principal.Email)
	return nil
}

// Authenticate resolves token to the caller it currently stands for. Role and
// customer are read from the stored user, so deactivation and role changes
// apply to tokens that are already issued. A deactivated user's session is closed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	session, err := s.sessions.Open(ctx, token)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	state := session.State()
	if !state.Active() {
		return model.Principal{}, ErrUnauthenticated
	}

	user, err := s.users.Get(ctx, state.Principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.sessions.Close(token)
			return model.Principal{}, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
		}
		return model.Principal{}, err
	}
	if !user.IsActive {
		_ = s.sessions.Close(token)
		return model.Principal{}, fmt.Errorf("%w: account deactivated", ErrUnauthenticated)
	}

	current := user.Principal()
	if !samePrincipal(current, state.Principal) {
		session.Apply(auth.Event{
			Type:      auth.SessionUpdated,
			Principal: current,
			Token:     state.Token,
			ExpiresAt: state.ExpiresAt,
		})
	}
	return current, nil
}

func samePrincipal(a, b model.Principal) bool {
	if a.UserID != b.UserID || a.Role != b.Role || a.Email != b.Email {
		return false
	}
	if a.CustomerID == nil || b.CustomerID == nil {
		return a.CustomerID == nil && b.CustomerID == nil
	}
	return *a.CustomerID == *b.CustomerID
}

// Me returns the profile of the signed-in user.
func (s *AuthService) Me(ctx context.Context, principal model.Principal) (*model.User, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.Get(ctx, principal.UserID)
	if err != nil {
		return nil, translate(err, "user")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", ErrUnauthenticated)
	}
	return user, nil
}
