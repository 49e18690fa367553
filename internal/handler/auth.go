package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"` // student | lab_assistant | admin
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

// Register handles POST /api/auth/register and logs the new user in.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, res)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.auth.Me(ctx, a)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, u)
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	users, err := h.auth.ListUsers(ctx, a)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, orEmpty(users))
}
