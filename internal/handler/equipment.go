package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

type createEquipmentRequest struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	Category      string `json:"category" validate:"required"`
	TotalQuantity int    `json:"totalQuantity" validate:"min=0"`
}

// updateEquipmentRequest only touches the fields present in the body.
type updateEquipmentRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Image         *string `json:"image"`
	Category      *string `json:"category"`
	TotalQuantity *int    `json:"totalQuantity" validate:"omitempty,min=0"`
}

// ListEquipment handles GET /api/equipment?category=&available=.
func (h *Handler) ListEquipment(c echo.Context) error {
	var f model.EquipmentFilter
	if err := echo.QueryParamsBinder(c).
		String("category", &f.Category).
		Bool("available", &f.AvailableOnly).
		BindError(); err != nil {
		return errs.E(errs.ErrValidation, "Invalid query parameters")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.equipment.List(ctx, f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, orEmpty(items))
}

// GetEquipment handles GET /api/equipment/:id.
func (h *Handler) GetEquipment(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	e, err := h.equipment.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, e)
}

// CreateEquipment handles POST /api/equipment.
func (h *Handler) CreateEquipment(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req createEquipmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	e, err := h.equipment.Create(ctx, a, service.EquipmentInput{
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		Category:      req.Category,
		TotalQuantity: req.TotalQuantity,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, e)
}

// UpdateEquipment handles PUT /api/equipment/:id.
func (h *Handler) UpdateEquipment(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req updateEquipmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	e, err := h.equipment.Update(ctx, a, c.Param("id"), model.EquipmentPatch{
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		Category:      req.Category,
		TotalQuantity: req.TotalQuantity,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, e)
}

// DeleteEquipment handles DELETE /api/equipment/:id.
func (h *Handler) DeleteEquipment(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.equipment.Delete(ctx, a, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}
