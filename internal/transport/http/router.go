package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hrms_backend/internal/handlers"
	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/hrms_backend/internal/roles"
)

type Deps struct {
	Gate *mwauth.Gate

	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	NotificationHandler *handlers.NotificationHandler
	PushHandler         *handlers.PushHandler
	StreamHandler       *handlers.StreamHandler
	HolidayHandler      *handlers.HolidayHandler
	LeaveHandler        *handlers.LeaveHandler
	SearchHandler       *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/signup", d.AuthHandler.Signup)
	v1.POST("/auth/login", d.AuthHandler.Login)
	v1.POST("/auth/refresh", d.AuthHandler.Refresh)
	v1.POST("/auth/logout", d.AuthHandler.Logout)
	v1.GET("/push/vapid-key", d.PushHandler.VAPIDKey)

	authed := v1.Group("", d.Gate.RequireAuth)

	authed.GET("/notifications", d.NotificationHandler.List)
	authed.GET("/notifications/unread-count", d.NotificationHandler.UnreadCount)
	authed.GET("/notifications/stream", d.StreamHandler.Subscribe)
	authed.PUT("/notifications/:id/read", d.NotificationHandler.MarkRead)
	authed.PUT("/notifications/read-all", d.NotificationHandler.MarkAllRead)

	authed.POST("/push/subscribe", d.PushHandler.Subscribe)
	authed.POST("/push/unsubscribe", d.PushHandler.Unsubscribe)

	authed.GET("/holidays", d.HolidayHandler.List)
	authed.POST("/leaves", d.LeaveHandler.Create)
	authed.GET("/leaves/mine", d.LeaveHandler.Mine)

	admin := authed.Group("/admin", d.Gate.RequireRole(roles.MinRole(roles.Admin)))

	admin.DELETE("/notifications/cleanup", d.NotificationHandler.Cleanup)
	admin.GET("/notifications/search", d.SearchHandler.Notifications)
	admin.PATCH("/users/:id/role", d.UserHandler.UpdateRole)
	admin.POST("/holidays", d.HolidayHandler.Create)
	admin.DELETE("/holidays/:id", d.HolidayHandler.Delete)
	admin.PUT("/leaves/:id/status", d.LeaveHandler.UpdateStatus)
}
