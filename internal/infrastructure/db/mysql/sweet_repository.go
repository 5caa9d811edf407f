package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// SweetRepository implements ports.SweetRepository. Stock changes run as one
// guarded UPDATE inside a transaction, so concurrent purchases serialize on
// the row and stock never goes negative.
type SweetRepository struct {
	db *gorm.DB
}

func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	m := sweetModel{
		Name:       s.Name,
		Price:      s.Price,
		Stock:      s.Stock,
		CategoryID: s.CategoryID,
		OwnerID:    s.OwnerID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, storeErr("insert sweet", err)
	}
	return m.toDomain(), nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	return findSweet(r.db.WithContext(ctx), id)
}

func (r *SweetRepository) List(ctx context.Context) ([]*domain.Sweet, error) {
	return r.find(ctx, domain.SearchFilter{})
}

func (r *SweetRepository) Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error) {
	return r.find(ctx, filter)
}

func (r *SweetRepository) find(ctx context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error) {
	var models []sweetModel
	if err := searchScope(r.db.WithContext(ctx), filter).Find(&models).Error; err != nil {
		return nil, storeErr("find sweets", err)
	}

	out := make([]*domain.Sweet, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *SweetRepository) Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	sid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	var updated *domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&sweetModel{}).Where("id = ?", sid).Updates(patchColumns(patch, time.Now().UTC()))
		if res.Error != nil {
			return storeErr("update sweet", res.Error)
		}
		s, err := findSweet(tx, id)
		if err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	sid, ok := parseID(id)
	if !ok {
		return domain.ErrSweetNotFound
	}

	res := r.db.WithContext(ctx).Where("id = ?", sid).Delete(&sweetModel{})
	if res.Error != nil {
		return storeErr("delete sweet", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

// DecrementStock subtracts quantity only when the current stock covers it.
func (r *SweetRepository) DecrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	return r.adjustStock(ctx, id, -quantity)
}

func (r *SweetRepository) IncrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	return r.adjustStock(ctx, id, quantity)
}

func (r *SweetRepository) adjustStock(ctx context.Context, id string, delta int) (*domain.Sweet, error) {
	sid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	var updated *domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := stockUpdate(tx, sid.String(), delta, time.Now().UTC())
		if res.Error != nil {
			return storeErr("adjust stock", res.Error)
		}
		if res.RowsAffected == 0 {
			// Either the row is gone or the guard refused the decrement.
			if _, err := findSweet(tx, id); err != nil {
				return err
			}
			return domain.ErrInsufficientStock
		}
		s, err := findSweet(tx, id)
		if err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func findSweet(db *gorm.DB, id string) (*domain.Sweet, error) {
	sid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	var m sweetModel
	if err := db.Where("id = ?", sid).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, storeErr("find sweet", err)
	}
	return m.toDomain(), nil
}

// stockUpdate builds the guarded stock statement. A negative delta only
// matches rows whose stock covers it.
func stockUpdate(db *gorm.DB, id string, delta int, now time.Time) *gorm.DB {
	q := db.Model(&sweetModel{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("stock >= ?", -delta)
	}
	return q.Updates(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", delta),
		"updated_at": now,
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchScope applies every non-empty predicate of the filter. Names are
// compared lower-cased so the match ignores case on any collation.
func searchScope(db *gorm.DB, f domain.SearchFilter) *gorm.DB {
	q := db.Model(&sweetModel{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+likeEscaper.Replace(strings.ToLower(f.Name))+"%")
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	return q.Order("created_at ASC, id ASC")
}

func patchColumns(p domain.SweetPatch, now time.Time) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": now}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Stock != nil {
		cols["stock"] = *p.Stock
	}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	return cols
}
