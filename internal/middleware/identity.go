package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

// Context keys set by JWTAuth.
const (
	KeyUserID   = "user_id"
	KeyRole     = "role"
	KeyUsername = "username"
	KeyEmail    = "email"
)

// Actor returns the authenticated caller. ok is false on public routes.
func Actor(c echo.Context) (model.Actor, bool) {
	id, _ := c.Get(KeyUserID).(string)
	if id == "" {
		return model.Actor{}, false
	}
	role, _ := c.Get(KeyRole).(model.Role)
	return model.Actor{ID: id, Role: role}, true
}

// currentUserID is used in rate limit keys; unauthenticated callers share
// the "anon" bucket per IP.
func currentUserID(c echo.Context) string {
	if a, ok := Actor(c); ok {
		return a.ID
	}
	return "anon"
}
