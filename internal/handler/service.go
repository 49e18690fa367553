package handler

import (
	"context"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type AuthService interface {
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Register(ctx context.Context, in service.RegisterInput) (service.AuthResult, error)
	Me(ctx context.Context, actor model.Actor) (model.User, error)
	ListUsers(ctx context.Context, actor model.Actor) ([]model.User, error)
}

type EquipmentService interface {
	List(ctx context.Context, f model.EquipmentFilter) ([]model.Equipment, error)
	Get(ctx context.Context, id string) (model.Equipment, error)
	Create(ctx context.Context, actor model.Actor, in service.EquipmentInput) (model.Equipment, error)
	Update(ctx context.Context, actor model.Actor, id string, p model.EquipmentPatch) (model.Equipment, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, in service.CreateBookingInput) (model.Booking, error)
	Get(ctx context.Context, actor model.Actor, id string) (model.Booking, error)
	List(ctx context.Context, actor model.Actor, f model.BookingFilter) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, actor model.Actor, id string, to model.BookingStatus) (model.Booking, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type NotificationService interface {
	List(ctx context.Context, actor model.Actor, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, actor model.Actor, id string) error
}

// Pinger reports database liveness for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}
