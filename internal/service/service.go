// Package service holds the business rules of the booking system. Services
// depend on the small store interfaces below; the repository package
// provides the SQL implementations.
package service

import (
	"context"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
}

type EquipmentStore interface {
	List(ctx context.Context, f model.EquipmentFilter) ([]model.Equipment, error)
	GetByID(ctx context.Context, id string) (model.Equipment, error)
	Create(ctx context.Context, e *model.Equipment) error
	Update(ctx context.Context, id string, p model.EquipmentPatch) (model.Equipment, error)
	Delete(ctx context.Context, id string) error
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	Transition(ctx context.Context, id string, to model.BookingStatus) (model.Booking, bool, error)
	Delete(ctx context.Context, id string) (model.Booking, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
