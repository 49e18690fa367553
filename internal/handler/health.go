package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Health handles GET /healthz. It answers "ok" while the database is
// reachable.
func (h *Handler) Health(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := withTimeout(c)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, envelope{Error: "database unavailable"})
		}
	}
	return c.String(http.StatusOK, "ok")
}
