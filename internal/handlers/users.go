package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/roles"
)

type UserHandler struct {
	Users *repo.UserRepo
}

// UpdateRole changes another account's role. Admins may grant Employee and
// Admin, only a SuperAdmin may grant SuperAdmin.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	caller := mwauth.CurrentUser(c)
	if caller == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil || req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing role")
	}

	if !roles.CanGrant(caller.Role, req.Role) {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
	}

	updated, err := h.Users.UpdateRole(c.Request().Context(), uint(id), req.Role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, updated)
}
