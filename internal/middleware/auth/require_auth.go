package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hrms_backend/internal/models"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/tokens"
)

type Gate struct {
	Users     *repo.UserRepo
	JWTSecret []byte
}

// RequireAuth verifies the bearer token and resolves it to a live account.
// A missing token, bad signature, expired token, unknown subject and a
// Deleted account all produce the same 401, so a deleted account is
// indistinguishable from a nonexistent one and its tokens are inert even
// before they expire.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.AccessClaimsFromToken(raw, g.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		id, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		user, err := g.Users.ByID(c.Request().Context(), id)
		if err != nil || user.Status == models.StatusDeleted {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("role", user.Role)
		return next(c)
	}
}

// CurrentUser returns the account RequireAuth resolved, nil outside an
// authenticated route.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get("user").(*models.User); ok {
		return u
	}
	return nil
}
