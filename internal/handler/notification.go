package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
)

// ListNotifications handles GET /api/notifications?unread=true.
func (h *Handler) ListNotifications(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var unread bool
	if err := echo.QueryParamsBinder(c).Bool("unread", &unread).BindError(); err != nil {
		return errs.E(errs.ErrValidation, "Invalid query parameters")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.notifications.List(ctx, a, unread)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, orEmpty(items))
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.notifications.MarkRead(ctx, a, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}
