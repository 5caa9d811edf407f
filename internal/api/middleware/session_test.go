package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

type stubResolver struct {
	authenticateFn func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubResolver) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.authenticateFn(ctx, token)
}

func TestSession_ValidCookie(t *testing.T) {
	e := echo.New()
	resolver := &stubResolver{
		authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
			if token != "good-token" {
				t.Fatalf("unexpected token %q", token)
			}
			return &domain.User{ID: "u1", Role: domain.RoleAdmin}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "good-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(resolver)(func(c echo.Context) error {
		called = true
		user, ok := CurrentUser(c)
		if !ok || user.ID != "u1" {
			t.Fatalf("user not attached")
		}
		if c.Get(ContextKeyUserID) != "u1" || c.Get(ContextKeyRole) != "ADMIN" {
			t.Fatalf("user_id/role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_MissingCookie(t *testing.T) {
	e := echo.New()
	resolver := &stubResolver{
		authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
			t.Fatalf("resolver should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Session(resolver)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSession_ResolverErrorsPassThrough(t *testing.T) {
	for _, want := range []error{domain.ErrTokenExpired, domain.ErrTokenInvalid, domain.ErrStoreUnavailable} {
		e := echo.New()
		resolver := &stubResolver{
			authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
				return nil, want
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
		c := e.NewContext(req, httptest.NewRecorder())

		err := Session(resolver)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})(c)

		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
		if _, ok := CurrentUser(c); ok {
			t.Errorf("no user may be attached on failure")
		}
	}
}
