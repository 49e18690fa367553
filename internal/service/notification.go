package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/queue"
)

type NotificationService struct {
	store NotificationStore
	log   *zap.Logger
}

func NewNotificationService(store NotificationStore, log *zap.Logger) *NotificationService {
	return &NotificationService{store: store, log: log.Named("notification")}
}

// HandleBookingEvent records a notification for the booking's owner. It is
// the queue.Handler fed by every broker.
func (s *NotificationService) HandleBookingEvent(ctx context.Context, ev queue.BookingEvent) error {
	msg := notificationMessage(ev)
	if msg == "" {
		s.log.Debug("ignoring event", zap.String("type", string(ev.Type)))
		return nil
	}
	bookingID := ev.BookingID
	n := model.Notification{UserID: ev.UserID, BookingID: &bookingID, Message: msg}
	if err := s.store.Create(ctx, &n); err != nil {
		return err
	}
	s.log.Debug("notification stored", zap.String("user_id", ev.UserID), zap.String("type", string(ev.Type)))
	return nil
}

func (s *NotificationService) List(ctx context.Context, actor model.Actor, unreadOnly bool) ([]model.Notification, error) {
	return s.store.ListByUser(ctx, actor.ID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor model.Actor, id string) error {
	return s.store.MarkRead(ctx, id, actor.ID)
}

func notificationMessage(ev queue.BookingEvent) string {
	what := fmt.Sprintf("%d x %s", ev.Quantity, ev.EquipmentName)
	if ev.EquipmentName == "" {
		what = fmt.Sprintf("%d unit(s)", ev.Quantity)
	}
	when := ev.StartDate.Format("Jan 2, 2006 15:04")

	switch ev.Type {
	case queue.BookingCreated:
		return fmt.Sprintf("Your booking of %s for %s is pending approval", what, when)
	case queue.BookingConfirmed:
		return fmt.Sprintf("Your booking of %s for %s was confirmed", what, when)
	case queue.BookingCancelled:
		return fmt.Sprintf("Your booking of %s for %s was cancelled", what, when)
	case queue.BookingCompleted:
		return fmt.Sprintf("Your booking of %s for %s was completed", what, when)
	case queue.BookingDeleted:
		return fmt.Sprintf("Your booking of %s for %s was deleted", what, when)
	}
	return ""
}
