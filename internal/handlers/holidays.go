package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/fanout"
	"github.com/Skotchmaster/hrms_backend/internal/models"
)

type HolidayHandler struct {
	DB     *gorm.DB
	Fanout *fanout.Service
}

func (h *HolidayHandler) List(c echo.Context) error {
	var holidays []models.Holiday
	if err := h.DB.WithContext(c.Request().Context()).Order("date ASC").Find(&holidays).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, holidays)
}

// Create stores a holiday and broadcasts it to every active account.
func (h *HolidayHandler) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Date string `json:"date"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" || req.Date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing name or date")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	holiday := models.Holiday{Name: req.Name, Date: date}
	if err := h.DB.WithContext(c.Request().Context()).Create(&holiday).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	h.Fanout.NotifyAll(c.Request().Context(), fanout.Event{
		Type:    models.TypeHolidayAdded,
		Title:   "New Holiday Added",
		Message: fmt.Sprintf("%s on %s", holiday.Name, holiday.Date.Format("2006-01-02")),
		Data:    map[string]any{"holidayId": holiday.ID, "date": holiday.Date.Format("2006-01-02")},
	})

	return c.JSON(http.StatusCreated, holiday)
}

func (h *HolidayHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid holiday id")
	}

	ctx := c.Request().Context()
	var holiday models.Holiday
	if err := h.DB.WithContext(ctx).First(&holiday, uint(id)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "holiday not found")
	}
	if err := h.DB.WithContext(ctx).Delete(&holiday).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	h.Fanout.NotifyAll(ctx, fanout.Event{
		Type:    models.TypeHolidayDeleted,
		Title:   "Holiday Removed",
		Message: fmt.Sprintf("%s is no longer a holiday", holiday.Name),
		Data:    map[string]any{"holidayId": holiday.ID},
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "holiday deleted"})
}
