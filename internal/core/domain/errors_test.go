package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	if verr.OrNil() != nil {
		t.Fatal("empty ValidationError should collapse to nil")
	}

	verr.Add("price", "must be greater than or equal to 0")
	verr.Add("name", "is required")
	err := fmt.Errorf("create sweet: %w", verr.OrNil())

	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is(err, ErrValidation)")
	}
	want := "validation failed: name: is required; price: must be greater than or equal to 0"
	if verr.Error() != want {
		t.Errorf("Error() = %q, want %q", verr.Error(), want)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		parent error
	}{
		{ErrTokenExpired, ErrUnauthenticated},
		{ErrTokenInvalid, ErrUnauthenticated},
		{ErrInvalidCredentials, ErrUnauthenticated},
		{ErrSweetNotFound, ErrNotFound},
		{ErrCategoryNotFound, ErrNotFound},
		{ErrUserExists, ErrConflict},
		{ErrCategoryExists, ErrConflict},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.parent) {
			t.Errorf("%v should wrap %v", c.err, c.parent)
		}
	}
}

func TestIsOwner(t *testing.T) {
	if !IsOwner("u1", "u1") {
		t.Error("same id should own")
	}
	if IsOwner("u1", "u2") {
		t.Error("different id should not own")
	}
	if IsOwner("", "") {
		t.Error("empty actor never owns")
	}
}

func TestCategoryKey(t *testing.T) {
	if CategoryKey("Chocolates") != CategoryKey(" chocolates ") {
		t.Error("category keys should fold case and trim")
	}
	if CategoryKey("Toffee") == CategoryKey("Fudge") {
		t.Error("distinct names should not collide")
	}
}

func TestSweetPatch_Apply(t *testing.T) {
	name := "Fudge"
	stock := 0
	base := Sweet{ID: "s1", Name: "Toffee", Stock: 4, OwnerID: "o1"}

	got := SweetPatch{Name: &name, Stock: &stock}.Apply(base)
	if got.Name != "Fudge" || got.Stock != 0 || got.OwnerID != "o1" || got.ID != "s1" {
		t.Fatalf("unexpected patched sweet: %+v", got)
	}
	if base.Name != "Toffee" {
		t.Fatal("Apply must not modify the original")
	}
	if !(SweetPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		price string
		ok    bool
	}{
		{"0", true},
		{"1.2345", true},
		{"1.23450000", true},
		{"9999999999999999.9999", true},
		{"-0.01", false},
		{"0.12345", false},
		{"10000000000000000", false},
		{"1e7000", false},
	}
	for _, tt := range tests {
		verr := &ValidationError{}
		ValidatePrice(verr, "price", decimal.RequireFromString(tt.price))
		if got := verr.Empty(); got != tt.ok {
			t.Errorf("ValidatePrice(%s): valid=%v, want %v (%v)", tt.price, got, tt.ok, verr.Fields)
		}
	}
}

func TestPurchaseRecord_Pending(t *testing.T) {
	if !(PurchaseRecord{Quantity: 1}).Pending() {
		t.Error("record without result should be pending")
	}
	if (PurchaseRecord{Quantity: 1, Result: &Sweet{ID: "s1"}}).Pending() {
		t.Error("record with result should not be pending")
	}
}
