package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// RequireRole enforces role-based access control. It must be mounted behind
// Session; without an attached user it answers 401.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
