package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Prices are stored as decimal(20,4).
const (
	PriceScale         = 4
	PriceIntegerDigits = 16
)

var priceLimit = decimal.New(1, PriceIntegerDigits)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sweet is a product record. Stock never drops below zero.
type Sweet struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CategoryID string          `json:"categoryId"`
	OwnerID    string          `json:"ownerId"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ValidatePrice records a message under field when p is negative or does
// not fit the stored precision.
func ValidatePrice(verr *ValidationError, field string, p decimal.Decimal) {
	switch {
	case p.IsNegative():
		verr.Add(field, "must be greater than or equal to 0")
	case p.Cmp(priceLimit) >= 0:
		verr.Add(field, fmt.Sprintf("must have at most %d integer digits", PriceIntegerDigits))
	case !p.Equal(p.Round(PriceScale)):
		verr.Add(field, fmt.Sprintf("must have at most %d decimal places", PriceScale))
	}
}

// SweetPatch lists the fields of a partial update. Nil means unchanged.
type SweetPatch struct {
	Name       *string
	Price      *decimal.Decimal
	Stock      *int
	CategoryID *string
}

// Empty reports whether the patch changes nothing.
func (p SweetPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Stock == nil && p.CategoryID == nil
}

// Apply returns a copy of s with the patch applied.
func (p SweetPatch) Apply(s Sweet) Sweet {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Stock != nil {
		s.Stock = *p.Stock
	}
	if p.CategoryID != nil {
		s.CategoryID = *p.CategoryID
	}
	return s
}

// IsOwner reports whether actorID may mutate a record owned by ownerID.
func IsOwner(actorID, ownerID string) bool {
	return actorID != "" && actorID == ownerID
}
