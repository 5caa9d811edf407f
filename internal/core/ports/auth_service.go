package ports

import (
	"context"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role // optional, defaults to USER
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate verifies a session token and resolves it to a stored user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
