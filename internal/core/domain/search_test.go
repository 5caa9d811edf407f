package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestSearchFilter_Matches(t *testing.T) {
	sweet := &Sweet{Name: "Dark Chocolate", CategoryID: "cat-1", Price: decimal.RequireFromString("3.50")}

	tests := []struct {
		name   string
		filter SearchFilter
		want   bool
	}{
		{"empty filter", SearchFilter{}, true},
		{"name substring any case", SearchFilter{Name: "CHOC"}, true},
		{"name mismatch", SearchFilter{Name: "gummy"}, false},
		{"category match", SearchFilter{CategoryID: "cat-1"}, true},
		{"category mismatch", SearchFilter{CategoryID: "cat-2"}, false},
		{"min inclusive", SearchFilter{PriceMin: dec("3.50")}, true},
		{"max inclusive", SearchFilter{PriceMax: dec("3.50")}, true},
		{"below min", SearchFilter{PriceMin: dec("3.51")}, false},
		{"above max", SearchFilter{PriceMax: dec("3.49")}, false},
		{"all predicates", SearchFilter{Name: "dark", CategoryID: "cat-1", PriceMin: dec("1"), PriceMax: dec("5")}, true},
		{"one failing predicate", SearchFilter{Name: "dark", CategoryID: "cat-9", PriceMin: dec("1")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(sweet); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchFilter_Validate(t *testing.T) {
	if err := (SearchFilter{PriceMin: dec("1"), PriceMax: dec("1")}).Validate(); err != nil {
		t.Fatalf("equal bounds should be valid, got %v", err)
	}

	err := SearchFilter{PriceMin: dec("5"), PriceMax: dec("1")}.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["priceMin"]) == 0 {
		t.Fatalf("expected priceMin error, got %v", err)
	}

	err = SearchFilter{PriceMax: dec("-1")}.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative bound, got %v", err)
	}
}

func TestSearchFilter_Validate_PriceOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		filter SearchFilter
		field  string
	}{
		{"huge exponent", SearchFilter{PriceMin: dec("1e7000")}, "priceMin"},
		{"too many integer digits", SearchFilter{PriceMax: dec("10000000000000000")}, "priceMax"},
		{"too many decimal places", SearchFilter{PriceMin: dec("0.12345")}, "priceMin"},
		{"tiny fraction", SearchFilter{PriceMax: dec("1e-7000")}, "priceMax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if err := tt.filter.Validate(); !errors.As(err, &verr) || len(verr.Fields[tt.field]) == 0 {
				t.Fatalf("expected %s validation error, got %v", tt.field, err)
			}
		})
	}
}

func TestSearchFilter_IsZero(t *testing.T) {
	if !(SearchFilter{}).IsZero() {
		t.Error("empty filter should be zero")
	}
	if (SearchFilter{PriceMin: dec("0")}).IsZero() {
		t.Error("filter with a bound should not be zero")
	}
}
