package mysql

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

type userModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	Name         string    `gorm:"size:255;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         string    `gorm:"size:16;not null;default:USER"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

// BeforeCreate sets UUID before creating the record.
func (m *userModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.String(),
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type categoryModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"size:80;not null"`
	NameKey     string    `gorm:"uniqueIndex;size:320;not null"`
	Description string    `gorm:"size:500"`
	CreatedAt   time.Time
}

func (categoryModel) TableName() string { return "categories" }

func (m *categoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *categoryModel) toDomain() *domain.Category {
	return &domain.Category{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type sweetModel struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Name       string          `gorm:"size:120;not null;index"`
	Price      decimal.Decimal `gorm:"type:decimal(20,4);not null;index"`
	Stock      int             `gorm:"not null;check:chk_sweets_stock,stock >= 0"`
	CategoryID string          `gorm:"size:36;not null;index"`
	OwnerID    string          `gorm:"size:36;not null;index"`
	CreatedAt  time.Time       `gorm:"index:idx_sweets_created"`
	UpdatedAt  time.Time
}

func (sweetModel) TableName() string { return "sweets" }

func (m *sweetModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *sweetModel) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:         m.ID.String(),
		Name:       m.Name,
		Price:      m.Price,
		Stock:      m.Stock,
		CategoryID: m.CategoryID,
		OwnerID:    m.OwnerID,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}
