package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
)

type PushHandler struct {
	Subs        *repo.SubscriptionRepo
	VAPIDPublic string
}

// VAPIDKey hands the browser the public key it needs to subscribe.
func (h *PushHandler) VAPIDKey(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"publicKey": h.VAPIDPublic})
}

// Subscribe registers a browser push endpoint for the caller. The body is
// the PushSubscription JSON the browser hands out verbatim.
func (h *PushHandler) Subscribe(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing subscription fields")
	}

	sub, err := h.Subs.Add(c.Request().Context(), user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe removes one endpoint when the body names it, or every endpoint
// the caller registered when it doesn't.
func (h *PushHandler) Unsubscribe(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	_ = c.Bind(&req)

	ctx := c.Request().Context()
	if req.Endpoint != "" {
		removed, err := h.Subs.RemoveUserEndpoint(ctx, user.ID, req.Endpoint)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "server error")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "subscription removed", "removed": removed})
	}

	removed, err := h.Subs.RemoveAllForUser(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "subscriptions removed", "removed": removed})
}
