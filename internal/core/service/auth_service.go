package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login and session resolution.
type AuthService struct {
	users  ports.UserRepository
	tokens *TokenIssuer
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens *TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	verr := &domain.ValidationError{}
	if email == "" {
		verr.Add("email", "is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.Add("email", "must be a valid email")
	}
	if name == "" {
		verr.Add("name", "is required")
	}
	if len(input.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		verr.Add("role", "must be one of: USER ADMIN")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := HashSecret(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return &ports.AuthResult{User: created, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)

	verr := &domain.ValidationError{}
	if email == "" {
		verr.Add("email", "is required")
	}
	if password == "" {
		verr.Add("password", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifySecret(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown session user", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
