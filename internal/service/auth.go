package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readtrack/readtrack-server/internal/auth"
	"github.com/readtrack/readtrack-server/internal/clock"
	"github.com/readtrack/readtrack-server/internal/domain"
	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
	"github.com/readtrack/readtrack-server/internal/id"
	"github.com/readtrack/readtrack-server/internal/metrics"
	"github.com/readtrack/readtrack-server/internal/store"
	"github.com/readtrack/readtrack-server/internal/validation"
)

// MsgInvalidCredentials is returned for any failed login.
const MsgInvalidCredentials = "Unable to log in with provided credentials."

// RegisterRequest contains the fields for creating an account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	FirstName string `json:"first_name,omitempty" validate:"max=150"`
	LastName  string `json:"last_name,omitempty" validate:"max=150"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService registers users, issues access tokens and resolves tokens
// back to users.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	clock     clock.Clock
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokens *auth.TokenService,
	validator *validation.Validator,
	clk clock.Clock,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		clock:     clk,
		logger:    logger,
	}
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		metrics.RecordAuthAttempt("register", false)
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DateJoined:   s.clock.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		metrics.RecordAuthAttempt("register", false)
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("A user with that username already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordAuthAttempt("register", true)
	s.logger.Info("user registered",
		"user_id", user.ID,
		"username", user.Username,
	)
	return user, nil
}

// Login verifies credentials and returns a new access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		metrics.RecordAuthAttempt("login", false)
		return "", err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		metrics.RecordAuthAttempt("login", false)
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.InvalidCredentials(MsgInvalidCredentials)
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		metrics.RecordAuthAttempt("login", false)
		s.logger.Debug("login rejected", "username", req.Username)
		return "", domainerrors.InvalidCredentials(MsgInvalidCredentials)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	metrics.RecordAuthAttempt("login", true)
	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

// VerifyAccessToken resolves a token to its user.
// Tokens for deleted users are rejected.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("Invalid token.").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("Invalid token.")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
