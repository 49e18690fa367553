package model

import "time"

type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	BookingID *string   `json:"bookingId,omitempty" db:"booking_id"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"is_read"`
	CreatedAt time.Time `json:"date" db:"created_at"`
}
