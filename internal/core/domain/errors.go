package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy. Specific errors wrap one of the category sentinels so
// callers can match either level with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("access forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

var (
	ErrTokenInvalid       = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)

	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrSweetNotFound    = fmt.Errorf("sweet %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	ErrUserExists     = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrCategoryExists = fmt.Errorf("%w: category already exists", ErrConflict)

	ErrPurchaseInProgress   = fmt.Errorf("%w: purchase with this idempotency key is in progress", ErrConflict)
	ErrIdempotencyKeyReused = fmt.Errorf("%w: idempotency key already used with a different quantity", ErrConflict)
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError holding a single message.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add appends msg to the messages recorded for field.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Empty reports whether no field messages were recorded.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
