package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

// RequireCapability aborts with 403 unless the caller's role grants want.
// It must run after JWTAuth.
func RequireCapability(want model.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, ok := Actor(c)
			if !ok {
				return errs.E(errs.ErrUnauthorized, "Not authorized, no token")
			}
			if !a.Role.Can(want) {
				return errs.Ef(errs.ErrForbidden, "Role %s is not allowed to perform this action", a.Role)
			}
			return next(c)
		}
	}
}
