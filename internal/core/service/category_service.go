package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
)

const (
	maxCategoryNameLength        = 80
	maxCategoryDescriptionLength = 500
)

type CategoryService struct {
	repo   ports.CategoryRepository
	logger zerolog.Logger
}

func NewCategoryService(repo ports.CategoryRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

// Create stores a new category. Names are compared case-insensitively by
// the repository; a clash yields domain.ErrCategoryExists.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	verr := &domain.ValidationError{}
	switch {
	case name == "":
		verr.Add("name", "is required")
	case utf8.RuneCountInString(name) > maxCategoryNameLength:
		verr.Add("name", fmt.Sprintf("must be at most %d characters", maxCategoryNameLength))
	}
	if utf8.RuneCountInString(description) > maxCategoryDescriptionLength {
		verr.Add("description", fmt.Sprintf("must be at most %d characters", maxCategoryDescriptionLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Category{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", created.ID).Str("name", created.Name).Msg("category created")
	return created, nil
}
