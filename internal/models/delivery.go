package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CityOption is one entry in the delivery city dropdown
type CityOption struct {
	City          string `json:"city" db:"city"`
	LocationCount int    `json:"location_count" db:"location_count"`
}

// DeliveryLocation is a deliverable address within a city. Selecting one
// fixes the delivery fee and the pickup-location display string.
type DeliveryLocation struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	City      string         `json:"city" db:"city"`
	Name      string         `json:"name" db:"name"`
	Address   string         `json:"address" db:"address"`
	Fee       float64        `json:"fee" db:"fee"`
	TimeSlots pq.StringArray `json:"time_slots" db:"time_slots"` // "09:00-11:00"
	Active    bool           `json:"active" db:"active"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// DisplayString is the resolved pickup-location string shown to the renter
func (l *DeliveryLocation) DisplayString() string {
	return l.Name + " - " + l.Address
}
