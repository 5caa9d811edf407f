package ports

import (
	"context"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// UserRepository defines persistence operations for registered users.
type UserRepository interface {
	// Create stores a new user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
