package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// SearchFilter is the conjunction of optional catalog predicates.
// Zero-valued fields impose no constraint.
type SearchFilter struct {
	Name       string
	CategoryID string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
}

// IsZero reports whether no predicate is set.
func (f SearchFilter) IsZero() bool {
	return f.Name == "" && f.CategoryID == "" && f.PriceMin == nil && f.PriceMax == nil
}

// Validate checks the price bounds.
func (f SearchFilter) Validate() error {
	verr := &ValidationError{}
	if f.PriceMin != nil {
		ValidatePrice(verr, "priceMin", *f.PriceMin)
	}
	if f.PriceMax != nil {
		ValidatePrice(verr, "priceMax", *f.PriceMax)
	}
	if verr.Empty() && f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		verr.Add("priceMin", "must be less than or equal to priceMax")
	}
	return verr.OrNil()
}

// Matches evaluates the filter against a single sweet.
func (f SearchFilter) Matches(s *Sweet) bool {
	if s == nil {
		return false
	}
	if f.Name != "" {
		fold := cases.Fold()
		if !strings.Contains(fold.String(s.Name), fold.String(f.Name)) {
			return false
		}
	}
	if f.CategoryID != "" && s.CategoryID != f.CategoryID {
		return false
	}
	if f.PriceMin != nil && s.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && s.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}
