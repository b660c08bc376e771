package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/fanout"
	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/hrms_backend/internal/models"
)

type LeaveHandler struct {
	DB     *gorm.DB
	Fanout *fanout.Service
}

// Create files a leave request for the caller. It starts Pending, nobody is
// notified until an admin decides on it.
func (h *LeaveHandler) Create(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req struct {
		Type   string `json:"type"`
		From   string `json:"from"`
		To     string `json:"to"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Type == "" || req.From == "" || req.To == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "to date before from date")
	}

	leave := models.Leave{
		UserID: user.ID,
		Type:   req.Type,
		From:   from,
		To:     to,
		Reason: req.Reason,
		Status: models.LeavePending,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&leave).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusCreated, leave)
}

// Mine lists the caller's own leave requests, newest first.
func (h *LeaveHandler) Mine(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	var leaves []models.Leave
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&leaves).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, leaves)
}

// UpdateStatus approves or rejects a leave request and notifies its owner.
// Admin surface, the route guard enforces the role.
func (h *LeaveHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid leave id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Status != models.LeaveApproved && req.Status != models.LeaveRejected {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be Approved or Rejected")
	}

	ctx := c.Request().Context()
	var leave models.Leave
	if err := h.DB.WithContext(ctx).First(&leave, uint(id)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "leave request not found")
	}

	leave.Status = req.Status
	if err := h.DB.WithContext(ctx).Save(&leave).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	h.Fanout.NotifyUser(ctx, leave.UserID, fanout.Event{
		Type:    models.TypeLeaveStatusUpdate,
		Title:   "Leave Request " + leave.Status,
		Message: fmt.Sprintf("Your %s leave request was %s", leave.Type, strings.ToLower(leave.Status)),
		Data:    map[string]any{"leaveId": leave.ID, "status": leave.Status},
	})

	return c.JSON(http.StatusOK, leave)
}
