package ports

import (
	"context"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// SweetRepository defines persistence operations for the catalog.
//
// DecrementStock and IncrementStock must be single atomic operations in the
// store: concurrent purchases are serialized there, not in the service.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	List(ctx context.Context) ([]*domain.Sweet, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error)
	Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error

	// DecrementStock subtracts quantity only if the current stock covers it.
	// Returns domain.ErrSweetNotFound or domain.ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error)
	// IncrementStock adds quantity to the current stock.
	IncrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error)
}

// PurchaseReplayStore remembers purchase results by idempotency key so a
// retried request does not decrement stock twice.
type PurchaseReplayStore interface {
	// Claim atomically reserves key for a purchase of quantity units. When
	// the key is already held, claimed is false and the existing record is
	// returned; a nil record means the holder's claim vanished meanwhile.
	Claim(ctx context.Context, key string, quantity int) (record *domain.PurchaseRecord, claimed bool, err error)
	// Complete replaces the claim with the finished purchase.
	Complete(ctx context.Context, key string, record domain.PurchaseRecord) error
	// Release drops a claim whose purchase failed.
	Release(ctx context.Context, key string) error
}
