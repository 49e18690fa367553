package model

import (
	"time"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Active bookings hold units of their equipment.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// transitions maps from -> to -> whether the move releases the booked units.
var transitions = map[BookingStatus]map[BookingStatus]bool{
	StatusPending: {
		StatusConfirmed: false,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCancelled: true,
		StatusCompleted: true,
	},
}

// NextStatus validates a move from -> to and returns the change in the
// equipment's available count for a booking of quantity units.
// from == to is reported as a zero-delta move; callers treat it as a no-op.
func NextStatus(from, to BookingStatus, quantity int) (int, error) {
	if !to.Valid() {
		return 0, errs.Ef(errs.ErrValidation, "invalid status %q", to)
	}
	if from == to {
		return 0, nil
	}
	release, ok := transitions[from][to]
	if !ok {
		return 0, errs.Ef(errs.ErrInvalidTransition, "cannot change status from %s to %s", from, to)
	}
	if release {
		return quantity, nil
	}
	return 0, nil
}

// Booking reserves Quantity units of one equipment item for a date range.
type Booking struct {
	ID          string            `json:"id"`
	EquipmentID string            `json:"equipmentId"`
	UserID      string            `json:"userId"`
	StartDate   time.Time         `json:"startDate"`
	EndDate     time.Time         `json:"endDate"`
	Quantity    int               `json:"quantity"`
	Status      BookingStatus     `json:"status"`
	Equipment   *EquipmentSummary `json:"equipment,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// BookingFilter narrows booking listings. An empty UserID lists everyone's.
type BookingFilter struct {
	UserID      string
	EquipmentID string
	Status      BookingStatus
}
