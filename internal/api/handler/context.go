package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-inventory/internal/api/middleware"
	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// actor returns the user attached by the Session middleware. Routes behind
// Session always have one; the check guards against mis-mounted handlers.
func actor(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
