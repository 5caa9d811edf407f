package middleware

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// CookieName is the cookie carrying the session token.
const CookieName = "auth-token"

// Context keys set by Session.
const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// SessionResolver turns a session token into the persisted user it names.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Session authenticates the request from the auth-token cookie and attaches
// the resolved user to the context. Failures are returned to the central
// error handler: bad or expired tokens and unknown users answer 401, store
// outages answer 503.
func Session(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return fmt.Errorf("%w: missing session cookie", domain.ErrUnauthenticated)
			}

			user, err := resolver.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return err
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyRole, string(user.Role))

			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Session.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*domain.User)
	return user, ok && user != nil
}
