package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// CategoryRepository implements ports.CategoryRepository. The unique index on
// name_key makes names collide regardless of case.
type CategoryRepository struct {
	db *gorm.DB
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	m := categoryModel{
		Name:        c.Name,
		NameKey:     domain.CategoryKey(c.Name),
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrCategoryExists
		}
		return nil, storeErr("insert category", err)
	}
	return m.toDomain(), nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	cid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	var m categoryModel
	if err := r.db.WithContext(ctx).Where("id = ?", cid).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, storeErr("find category", err)
	}
	return m.toDomain(), nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var models []categoryModel
	if err := r.db.WithContext(ctx).Order("name_key ASC").Find(&models).Error; err != nil {
		return nil, storeErr("list categories", err)
	}

	out := make([]*domain.Category, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}
