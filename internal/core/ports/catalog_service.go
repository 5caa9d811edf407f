package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// CreateSweetInput carries the fields needed to create a sweet.
type CreateSweetInput struct {
	Name       string
	Price      decimal.Decimal
	Stock      int
	CategoryID string
}

// PurchaseInput carries a purchase request.
type PurchaseInput struct {
	SweetID        string
	Quantity       int
	IdempotencyKey string // optional
}

// PurchaseOutcome is the result of a purchase. Replayed is set when the
// sweet was recorded by an earlier request with the same idempotency key.
type PurchaseOutcome struct {
	Sweet    *domain.Sweet
	Replayed bool
}

// SweetService defines the catalog use cases. The actor is the user attached
// by the session middleware.
type SweetService interface {
	List(ctx context.Context) ([]*domain.Sweet, error)
	Get(ctx context.Context, id string) (*domain.Sweet, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error)
	Create(ctx context.Context, actor *domain.User, input CreateSweetInput) (*domain.Sweet, error)
	// AuthorizeOwner fails unless actor is an admin owning sweet id. Not
	// found is reported before forbidden.
	AuthorizeOwner(ctx context.Context, actor *domain.User, id string) error
	Update(ctx context.Context, actor *domain.User, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	Purchase(ctx context.Context, actor *domain.User, input PurchaseInput) (*PurchaseOutcome, error)
	Restock(ctx context.Context, actor *domain.User, id string, quantity int) (*domain.Sweet, error)
}

// CategoryService defines the category use cases.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, name, description string) (*domain.Category, error)
}
