package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hrms_backend/internal/roles"
)

// RequireRole gates a route on a role requirement. It must be chained
// after RequireAuth, an unauthenticated request is rejected before the
// role is even considered. The check is side-effect free; ownership checks
// on a caller's own resource are layered in the handler on top of this,
// never instead of it.
func (g *Gate) RequireRole(req roles.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if !req.Allows(user.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
