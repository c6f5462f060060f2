package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/samsedu/rise/core/user"
)

// roleMiddleware guards a route group behind any of the given roles.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if contextHasAnyRole(ctx, roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func superAdminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleSuperAdmin)
}

func schoolStaffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleSchoolAdmin, user.RoleTeacher)
}

func teacherMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleTeacher)
}
