package model

import (
	"encoding/json"
	"time"
)

// Equipment is a bookable item type held in TotalQuantity units, of which
// Available are not reserved. 0 <= Available <= TotalQuantity.
type Equipment struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Image         string    `json:"image" db:"image"`
	Category      string    `json:"category" db:"category"`
	TotalQuantity int       `json:"totalQuantity" db:"total_quantity"`
	Available     int       `json:"available" db:"available"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

func (e Equipment) IsAvailable() bool { return e.Available > 0 }

func (e Equipment) MarshalJSON() ([]byte, error) {
	type plain Equipment
	return json.Marshal(struct {
		plain
		IsAvailable bool `json:"isAvailable"`
	}{plain(e), e.IsAvailable()})
}

// EquipmentSummary is attached to bookings in read responses.
type EquipmentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// EquipmentFilter narrows catalog listings.
type EquipmentFilter struct {
	Category      string
	AvailableOnly bool
}

// EquipmentPatch carries the fields of an update; nil fields are left as is.
type EquipmentPatch struct {
	Name          *string
	Description   *string
	Image         *string
	Category      *string
	TotalQuantity *int
}
