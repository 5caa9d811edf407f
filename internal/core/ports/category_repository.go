package ports

import (
	"context"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	// Create returns domain.ErrCategoryExists when a category with the same
	// folded name already exists.
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}
