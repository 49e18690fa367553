// Package queue carries booking lifecycle events from the API to the
// notification consumer over RabbitMQ, Kafka or an in-process dispatcher.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

type EventType string

const (
	BookingCreated   EventType = "booking.created"
	BookingConfirmed EventType = "booking.confirmed"
	BookingCancelled EventType = "booking.cancelled"
	BookingCompleted EventType = "booking.completed"
	BookingDeleted   EventType = "booking.deleted"
)

// EventForStatus returns the event emitted when a booking enters s.
func EventForStatus(s model.BookingStatus) EventType {
	switch s {
	case model.StatusConfirmed:
		return BookingConfirmed
	case model.StatusCancelled:
		return BookingCancelled
	case model.StatusCompleted:
		return BookingCompleted
	}
	return BookingCreated
}

// BookingEvent is published on every lifecycle change. It carries enough
// for consumers to notify the owner without querying the database.
type BookingEvent struct {
	Type          EventType           `json:"type"`
	BookingID     string              `json:"bookingId"`
	UserID        string              `json:"userId"`
	ActorID       string              `json:"actorId"`
	EquipmentID   string              `json:"equipmentId"`
	EquipmentName string              `json:"equipmentName"`
	Quantity      int                 `json:"quantity"`
	Status        model.BookingStatus `json:"status"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

func NewBookingEvent(t EventType, b model.Booking, actorID string) BookingEvent {
	ev := BookingEvent{
		Type:        t,
		BookingID:   b.ID,
		UserID:      b.UserID,
		ActorID:     actorID,
		EquipmentID: b.EquipmentID,
		Quantity:    b.Quantity,
		Status:      b.Status,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		OccurredAt:  time.Now().UTC(),
	}
	if b.Equipment != nil {
		ev.EquipmentName = b.Equipment.Name
	}
	return ev
}

// Handler processes one event. A returned error rejects the message.
type Handler func(ctx context.Context, ev BookingEvent) error

// Publisher sends events to the configured broker.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

// Consumer delivers events to a Handler until ctx is cancelled.
type Consumer interface {
	Run(ctx context.Context) error
}

func encode(ev BookingEvent) ([]byte, error) {
	b, err := json.Marshal(ev)
	return b, errors.Wrap(err, "marshal event")
}

func dispatch(ctx context.Context, body []byte, h Handler) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal event")
	}
	if ev.Type == "" || ev.BookingID == "" {
		return errors.New("event without type or booking id")
	}
	return h(ctx, ev)
}
