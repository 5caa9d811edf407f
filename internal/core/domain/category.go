package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Category is a named grouping of sweets. Names are unique regardless of case.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryKey returns the folded form of name used for uniqueness checks,
// so "Chocolates" and "chocolates" collide.
func CategoryKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
