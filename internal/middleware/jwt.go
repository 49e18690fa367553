// Package middleware contains the echo middleware for authentication,
// authorization, response caching, rate limiting and request logging.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/utils"
)

// JWTAuth validates the bearer access token and stores its claims in the
// echo context under the Key* names.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return errs.E(errs.ErrUnauthorized, "Not authorized, no token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return errs.E(errs.ErrUnauthorized, "Not authorized, token failed")
			}
			c.Set(KeyUserID, claims.Subject)
			c.Set(KeyRole, claims.Role)
			c.Set(KeyUsername, claims.Username)
			c.Set(KeyEmail, claims.Email)
			return next(c)
		}
	}
}
