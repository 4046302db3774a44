package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// VehicleStatus represents the lifecycle status of a rental vehicle
// Matches PostgreSQL ENUM: vehicle_status
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

// Vehicle represents a rentable vehicle in the fleet
type Vehicle struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Make         string         `json:"make" db:"make"`
	Model        string         `json:"model" db:"model"`
	Year         int            `json:"year" db:"year"`
	Category     string         `json:"category" db:"category"` // sedan, suv, van, truck
	Seats        int            `json:"seats" db:"seats"`
	Transmission string         `json:"transmission" db:"transmission"`
	FuelType     string         `json:"fuel_type" db:"fuel_type"`
	DailyRate    float64        `json:"daily_rate" db:"daily_rate"`
	WeeklyRate   float64        `json:"weekly_rate" db:"weekly_rate"`
	MonthlyRate  float64        `json:"monthly_rate" db:"monthly_rate"`
	ImageURL     NullString     `json:"image_url,omitempty" db:"image_url"`
	Features     pq.StringArray `json:"features" db:"features"`
	Description  NullString     `json:"description,omitempty" db:"description"`
	Status       VehicleStatus  `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// ListVehiclesFilter holds the optional query filters for the vehicle list
type ListVehiclesFilter struct {
	Category string
	Seats    int
	MaxDaily float64
}
