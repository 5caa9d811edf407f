package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
)

const maxSweetNameLength = 120

// SweetService applies catalog mutations and queries.
type SweetService struct {
	sweets     ports.SweetRepository
	categories ports.CategoryRepository
	replay     ports.PurchaseReplayStore
	logger     zerolog.Logger
}

// NewSweetService wires the catalog use cases. replay may be nil, in which
// case idempotency keys are ignored.
func NewSweetService(
	sweets ports.SweetRepository,
	categories ports.CategoryRepository,
	replay ports.PurchaseReplayStore,
	logger zerolog.Logger,
) *SweetService {
	return &SweetService{
		sweets:     sweets,
		categories: categories,
		replay:     replay,
		logger:     logger,
	}
}

func (s *SweetService) List(ctx context.Context) ([]*domain.Sweet, error) {
	return s.sweets.List(ctx)
}

func (s *SweetService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	return s.sweets.FindByID(ctx, id)
}

// Search validates the filter and returns the matching sweets. An empty
// filter is equivalent to List.
func (s *SweetService) Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.IsZero() {
		return s.sweets.List(ctx)
	}
	return s.sweets.Search(ctx, filter)
}

// Create stores a new sweet owned by actor.
func (s *SweetService) Create(ctx context.Context, actor *domain.User, input ports.CreateSweetInput) (*domain.Sweet, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	verr := &domain.ValidationError{}
	validateName(verr, name)
	domain.ValidatePrice(verr, "price", input.Price)
	if input.Stock < 0 {
		verr.Add("stock", "must be a non-negative integer")
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		verr.Add("categoryId", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.sweets.Create(ctx, &domain.Sweet{
		Name:       name,
		Price:      input.Price,
		Stock:      input.Stock,
		CategoryID: input.CategoryID,
		OwnerID:    actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create sweet")
		return nil, err
	}

	s.logger.Info().Str("sweet_id", created.ID).Str("owner_id", actor.ID).Msg("sweet created")
	return created, nil
}

// Update applies a partial update. Ownership is checked before the patch is
// validated, so a non-owner is always refused.
func (s *SweetService) Update(ctx context.Context, actor *domain.User, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	if _, err := s.authorizeOwner(ctx, actor, id); err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, domain.NewValidationError("body", "at least one of name, price, stock, categoryId is required")
	}

	verr := &domain.ValidationError{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
		validateName(verr, name)
	}
	if patch.Price != nil {
		domain.ValidatePrice(verr, "price", *patch.Price)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		verr.Add("stock", "must be a non-negative integer")
	}
	if patch.CategoryID != nil && strings.TrimSpace(*patch.CategoryID) == "" {
		verr.Add("categoryId", "must not be empty")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if patch.CategoryID != nil {
		if err := s.ensureCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}

	updated, err := s.sweets.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("sweet_id", id).Str("actor_id", actor.ID).Msg("sweet updated")
	return updated, nil
}

func (s *SweetService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.authorizeOwner(ctx, actor, id); err != nil {
		return err
	}
	if err := s.sweets.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("sweet_id", id).Str("actor_id", actor.ID).Msg("sweet deleted")
	return nil
}

// Purchase decrements stock by the requested quantity, all or nothing. Any
// authenticated user may purchase. An idempotency key is claimed before
// stock is touched: a repeated key returns the recorded result, and a key
// whose first purchase is still running is refused.
func (s *SweetService) Purchase(ctx context.Context, actor *domain.User, input ports.PurchaseInput) (*ports.PurchaseOutcome, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if input.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be a positive integer")
	}

	replayKey := ""
	if input.IdempotencyKey != "" && s.replay != nil {
		key := fmt.Sprintf("%s:%s:%s", actor.ID, input.SweetID, input.IdempotencyKey)
		record, claimed, err := s.replay.Claim(ctx, key, input.Quantity)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("sweet_id", input.SweetID).Msg("replay claim failed, processing anyway")
		case claimed:
			replayKey = key
		default:
			return s.replayed(input, record)
		}
	}

	updated, err := s.sweets.DecrementStock(ctx, input.SweetID, input.Quantity)
	if err != nil {
		if replayKey != "" {
			if rerr := s.replay.Release(context.WithoutCancel(ctx), replayKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("sweet_id", input.SweetID).Msg("failed to release purchase claim")
			}
		}
		return nil, err
	}

	if replayKey != "" {
		record := domain.PurchaseRecord{Quantity: input.Quantity, Result: updated}
		if err := s.replay.Complete(context.WithoutCancel(ctx), replayKey, record); err != nil {
			s.logger.Warn().Err(err).Str("sweet_id", input.SweetID).Msg("failed to record purchase replay")
		}
	}

	s.logger.Info().
		Str("sweet_id", input.SweetID).
		Str("buyer_id", actor.ID).
		Int("quantity", input.Quantity).
		Int("stock", updated.Stock).
		Msg("purchase completed")
	return &ports.PurchaseOutcome{Sweet: updated}, nil
}

func (s *SweetService) replayed(input ports.PurchaseInput, record *domain.PurchaseRecord) (*ports.PurchaseOutcome, error) {
	switch {
	case record == nil:
		return nil, domain.ErrPurchaseInProgress
	case record.Quantity != input.Quantity:
		return nil, domain.ErrIdempotencyKeyReused
	case record.Pending():
		return nil, domain.ErrPurchaseInProgress
	}
	s.logger.Info().Str("sweet_id", input.SweetID).Str("idempotency_key", input.IdempotencyKey).Msg("idempotent replay")
	return &ports.PurchaseOutcome{Sweet: record.Result, Replayed: true}, nil
}

// Restock increments stock. Owner-admin only.
func (s *SweetService) Restock(ctx context.Context, actor *domain.User, id string, quantity int) (*domain.Sweet, error) {
	if _, err := s.authorizeOwner(ctx, actor, id); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be a positive integer")
	}

	updated, err := s.sweets.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("sweet_id", id).Int("quantity", quantity).Int("stock", updated.Stock).Msg("sweet restocked")
	return updated, nil
}

// AuthorizeOwner lets the HTTP layer refuse a non-owner before it decodes
// the request body.
func (s *SweetService) AuthorizeOwner(ctx context.Context, actor *domain.User, id string) error {
	_, err := s.authorizeOwner(ctx, actor, id)
	return err
}

// authorizeOwner runs the role check, then fetches the record (not found
// wins over forbidden), then the ownership check.
func (s *SweetService) authorizeOwner(ctx context.Context, actor *domain.User, id string) (*domain.Sweet, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	sweet, err := s.sweets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.IsOwner(actor.ID, sweet.OwnerID) {
		return nil, domain.ErrForbidden
	}
	return sweet, nil
}

func (s *SweetService) ensureCategory(ctx context.Context, id string) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return fmt.Errorf("%w: category %q does not exist", domain.ErrInvalidReference, id)
		}
		return err
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func validateName(verr *domain.ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("name", "is required")
	case utf8.RuneCountInString(name) > maxSweetNameLength:
		verr.Add("name", fmt.Sprintf("must be at most %d characters", maxSweetNameLength))
	}
}
