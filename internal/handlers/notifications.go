package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hrms_backend/internal/logging"
	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/util"
)

type NotificationHandler struct {
	Notifications *repo.NotificationRepo
}

// List returns the caller's notifications, newest first, with the pagination
// block and the unread count alongside.
func (h *NotificationHandler) List(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	items, total, unread, err := h.Notifications.ListForUser(c.Request().Context(), user.ID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": items,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.Pages(total, limit),
		},
		"unreadCount": unread,
	})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	unread, err := h.Notifications.UnreadCount(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": unread})
}

// MarkRead flips one notification to read. A record owned by someone else
// comes back 404, the same as one that never existed.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	n, err := h.Notifications.MarkRead(c.Request().Context(), uint(id), user.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err := h.Notifications.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "all notifications marked as read"})
}

// Cleanup deletes read notifications older than ?days (default 30). Admin
// surface, the route guard enforces the role.
func (h *NotificationHandler) Cleanup(c echo.Context) error {
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days value")
		}
		days = parsed
	}

	deleted, err := h.Notifications.Cleanup(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	logging.FromContext(c.Request().Context()).Info("notification cleanup", "days", days, "deleted", deleted)
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted, "olderThanDays": days})
}
