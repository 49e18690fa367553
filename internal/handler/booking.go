package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

type createBookingRequest struct {
	EquipmentID string `json:"equipmentId" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
}

type updateBookingRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

// dateLayouts are tried in order; the client may send a full timestamp or
// just a calendar day.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errs.Ef(errs.ErrValidation, "%s must be a valid date", field)
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req createBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.bookings.Create(ctx, a, service.CreateBookingInput{
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, b)
}

// ListBookings handles GET /api/bookings?status=&equipmentId=. Students
// only ever see their own bookings.
func (h *Handler) ListBookings(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	f := model.BookingFilter{
		EquipmentID: c.QueryParam("equipmentId"),
		Status:      model.BookingStatus(c.QueryParam("status")),
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.bookings.List(ctx, a, f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, orEmpty(items))
}

// GetBooking handles GET /api/bookings/:id.
func (h *Handler) GetBooking(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.bookings.Get(ctx, a, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id with {"status": ...}.
func (h *Handler) UpdateBookingStatus(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req updateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.bookings.UpdateStatus(ctx, a, c.Param("id"), model.BookingStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b)
}

// DeleteBooking handles DELETE /api/bookings/:id.
func (h *Handler) DeleteBooking(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.bookings.Delete(ctx, a, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}
