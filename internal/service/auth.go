// Package service contains the business logic layer: validation, credential
// checks, and the ownership rules, sitting between the HTTP handlers and the
// repositories.
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (session tokens)
//
// The services know nothing about HTTP — they take primitives and return
// domain errors; the handlers translate both ways.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/miniblog/internal/apperror"
	"github.com/sakif/miniblog/internal/auth"
	"github.com/sakif/miniblog/internal/model"
	"github.com/sakif/miniblog/internal/repository"
)

// AuthService handles registration, login, and the per-request user lookup.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository → read/write user records
//   - tokens     *auth.TokenService        → sign/verify session tokens
//   - passwords  *auth.PasswordService     → bcrypt hashing
//   - logger     *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Called from the composition root in internal/server.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the authenticated user with the issued session token
// so the handler can set the cookie and write the response in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

// Register creates a new account. No session is issued as a side effect —
// the caller logs in separately, which is why the handler answers a
// successful registration with a pointer at the login page.
//
// Failure modes:
//   - empty username or password → ErrValidation
//   - username already taken     → ErrConflict
//
// The availability pre-check below gives the common case a clean error
// without touching bcrypt, but it races with concurrent registrations. The
// UNIQUE constraint inside UserRepository.Create is the authoritative guard;
// it reports the same conflict error, so callers can't tell which side
// caught the duplicate.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)

	if username == "" {
		return apperror.ValidationFailed("username", "Username is required.")
	}
	if password == "" {
		return apperror.ValidationFailed("password", "Password is required.")
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return apperror.Conflict(fmt.Sprintf("User %s is already registered.", username))
	case !errors.Is(err, apperror.ErrNotFound):
		return fmt.Errorf("service/auth: checking username %q: %w", username, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Conflict from the UNIQUE constraint propagates as-is.
		if errors.Is(err, apperror.ErrConflict) {
			return err
		}
		return fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return nil
}

// Login verifies credentials and issues a fresh session token.
//
// The two failure messages — "incorrect username" and "incorrect password" —
// are deliberately distinguishable; that matches the long-standing behavior
// of this service even though it lets a caller probe which usernames exist.
// Both map to the same 401 status, and neither ever includes the stored
// hash. The bcrypt comparison is constant-time, so timing doesn't leak
// password prefixes either.
//
// Replacing the client's previous session cookie with the fresh token is the
// handler's half of "clear any prior session state".
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("incorrect username")
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("incorrect password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating session for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// session middleware for the once-per-request user re-fetch.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}
