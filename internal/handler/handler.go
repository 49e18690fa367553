// Package handler contains the HTTP handlers of the booking API. Handlers
// bind and validate the request, call a service and write the JSON
// envelope; errors are returned to echo and rendered by HTTPErrorHandler.
package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/middleware"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

// requestTimeout bounds every service call made on behalf of a request.
const requestTimeout = 5 * time.Second

type Handler struct {
	auth          AuthService
	equipment     EquipmentService
	bookings      BookingService
	notifications NotificationService
	db            Pinger
	log           *zap.Logger
}

func New(
	auth AuthService,
	equipment EquipmentService,
	bookings BookingService,
	notifications NotificationService,
	db Pinger,
	log *zap.Logger,
) *Handler {
	return &Handler{
		auth:          auth,
		equipment:     equipment,
		bookings:      bookings,
		notifications: notifications,
		db:            db,
		log:           log.Named("handler"),
	}
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// actor returns the authenticated caller set by the JWT middleware.
func actor(c echo.Context) (model.Actor, error) {
	a, ok := middleware.Actor(c)
	if !ok {
		return model.Actor{}, errs.E(errs.ErrUnauthorized, "Not authorized, no token")
	}
	return a, nil
}

// bind decodes and validates the request body into dst.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errs.E(errs.ErrValidation, "Invalid request body")
	}
	return c.Validate(dst)
}

// orEmpty keeps empty lists encoded as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
