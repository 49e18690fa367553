// Package router wires handlers and middleware into an echo instance.
package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
	"github.com/iliyamo/lab-equipment-booking/internal/handler"
	"github.com/iliyamo/lab-equipment-booking/internal/middleware"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/validate"
)

// equipmentResource names the cache namespace of catalog reads. Booking
// writes evict it too since they move availability.
const equipmentResource = "equipment"

// New builds the API. rdb may be nil, in which case the response cache is
// a pass-through and rate limiting is kept in memory.
func New(cfg *config.Config, h *handler.Handler, rdb *redis.Client, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.NewCustomValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.Secure())
	e.Use(echomw.Gzip())

	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, rdb, log)
	auth := middleware.JWTAuth(cfg.Auth.JWTSecret)

	e.GET("/healthz", h.Health)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/login", h.Login, limiter)
	authGroup.POST("/register", h.Register, limiter)
	authGroup.GET("/me", h.Me, auth)

	api := e.Group("/api", auth)

	read := middleware.RequireCapability(model.CapEquipmentRead)
	write := middleware.RequireCapability(model.CapEquipmentWrite)
	evict := cache.Evict(equipmentResource)

	eq := api.Group("/equipment")
	eq.GET("", h.ListEquipment, read, cache.Cache(equipmentResource))
	eq.GET("/:id", h.GetEquipment, read, cache.Cache(equipmentResource))
	eq.POST("", h.CreateEquipment, write, evict)
	eq.PUT("/:id", h.UpdateEquipment, write, evict)
	eq.DELETE("/:id", h.DeleteEquipment, write, evict)

	// ownership is checked by the booking service
	bk := api.Group("/bookings")
	bk.GET("", h.ListBookings)
	bk.POST("", h.CreateBooking, middleware.RequireCapability(model.CapBookingCreate), evict)
	bk.GET("/:id", h.GetBooking)
	bk.PATCH("/:id", h.UpdateBookingStatus, evict)
	bk.DELETE("/:id", h.DeleteBooking, evict)

	api.GET("/notifications", h.ListNotifications)
	api.PATCH("/notifications/:id/read", h.MarkNotificationRead)

	api.GET("/users", h.ListUsers, middleware.RequireCapability(model.CapUserList))

	return e
}
