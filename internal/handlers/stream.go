package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hrms_backend/internal/bus"
	"github.com/Skotchmaster/hrms_backend/internal/logging"
	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
)

type StreamHandler struct {
	Bus *bus.Bus
}

// Subscribe attaches the caller to their notification room over
// server-sent events. The connection stays open until the client drops it,
// events missed while disconnected are reconciled over the REST listing.
func (h *StreamHandler) Subscribe(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	room := strconv.FormatUint(uint64(user.ID), 10)
	sub := h.Bus.Subscribe(room, 0)
	defer sub.Close()

	l := logging.FromContext(c.Request().Context())
	l.Info("stream opened", "user_id", user.ID)
	defer l.Info("stream closed", "user_id", user.ID)

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				l.Error("stream payload encode failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
