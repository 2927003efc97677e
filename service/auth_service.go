package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/model"
	"github.com/utpal74/track-my-tasks-api/oauth"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID uint, ttl time.Duration) (string, error)
}

// AuthService implements account creation and the login flows.
type AuthService struct {
	store  db.Store
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(store db.Store, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens}
}

// SignupInput is a password signup request.
type SignupInput struct {
	Email    string
	Password string
	Username string
}

// Signup creates a password account and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	email := normalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return "", err
	}

	var username *string
	if name := strings.TrimSpace(in.Username); name != "" {
		_, err := s.store.UserByUsername(ctx, name)
		switch {
		case err == nil:
			return "", ErrUsernameTaken
		case !errors.Is(err, db.ErrNotFound):
			return "", err
		}
		username = &name
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	user := &model.User{
		Email:          email,
		Username:       username,
		HashedPassword: &hashed,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return "", s.signupConflict(ctx, email, username, err)
		}
		return "", err
	}
	return s.tokens.Issue(user.ID, 0)
}

// signupConflict names the field a concurrent signup claimed between the
// pre-checks and the insert.
func (s *AuthService) signupConflict(ctx context.Context, email string, username *string, err error) error {
	if _, lookupErr := s.store.UserByEmail(ctx, email); lookupErr == nil {
		return ErrEmailTaken
	}
	if username != nil {
		if _, lookupErr := s.store.UserByUsername(ctx, *username); lookupErr == nil {
			return ErrUsernameTaken
		}
	}
	return err
}

// Login checks a password and returns a token. Every failure is reported as
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, db.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !user.HasPassword() || !s.hasher.Verify(password, *user.HashedPassword) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID, 0)
}

// OAuthLogin signs in with a provider identity. A known identity logs in,
// an unknown one is linked to the password account with the same email or,
// failing that, becomes a new OAuth-only account.
//
// Signup never proves email ownership but the provider does, so linking
// drops the account's password: whoever chose it may not own the address.
func (s *AuthService) OAuthLogin(ctx context.Context, id oauth.Identity) (string, error) {
	user, err := s.store.UserByOAuth(ctx, id.Provider, id.ID)
	if err == nil {
		return s.tokens.Issue(user.ID, 0)
	}
	if !errors.Is(err, db.ErrNotFound) {
		return "", err
	}

	email := normalizeEmail(id.Email)
	user, err = s.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.OAuthProvider != nil {
			return "", ErrEmailTaken
		}
		user.OAuthProvider = &id.Provider
		user.OAuthID = &id.ID
		user.HashedPassword = nil
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return "", fmt.Errorf("link oauth identity: %w", err)
		}
		return s.tokens.Issue(user.ID, 0)
	case !errors.Is(err, db.ErrNotFound):
		return "", err
	}

	user = &model.User{
		Email:         email,
		Username:      s.freeUsername(ctx, id.Username),
		OAuthProvider: &id.Provider,
		OAuthID:       &id.ID,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return s.tokens.Issue(user.ID, 0)
}

// DeleteAccount removes the user with all of its tasks and categories.
func (s *AuthService) DeleteAccount(ctx context.Context, user *model.User) error {
	return s.store.DeleteUser(ctx, user.ID)
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case errors.Is(err, db.ErrNotFound):
		return nil
	default:
		return err
	}
}

// freeUsername returns name when nobody holds it yet.
func (s *AuthService) freeUsername(ctx context.Context, name string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if _, err := s.store.UserByUsername(ctx, name); !errors.Is(err, db.ErrNotFound) {
		return nil
	}
	return &name
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
