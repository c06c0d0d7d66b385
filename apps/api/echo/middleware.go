package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/auth"
)

// roleMiddleware lets through the tokens carrying one of roles.
func roleMiddleware(roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if hasAnyRole(getContextRole(ctx), roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func hasAnyRole(role auth.Role, roles ...auth.Role) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

var (
	adminOnly      = roleMiddleware(auth.RoleAdmin)
	teacherOrAbove = roleMiddleware(auth.RoleAdmin, auth.RoleTeacher)
	contentAuthors = roleMiddleware(auth.RoleAdmin, auth.RoleTeacher, auth.RoleEditor)
)
