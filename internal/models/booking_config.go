package models

import "time"

// BookingPolicy holds the tenant-configurable booking rules stored in the
// booking_config table (single row). Consumers read it through the config
// service, which fronts this table with a short-TTL cache.
type BookingPolicy struct {
	ID                     int       `json:"-" db:"id"`
	MinLeadTimeHours       int       `json:"min_lead_time_hours" db:"min_lead_time_hours"`
	MaxAdvanceDays         int       `json:"max_advance_days" db:"max_advance_days"`
	MinRentalDays          int       `json:"min_rental_days" db:"min_rental_days"`
	WeeklyThresholdDays    int       `json:"weekly_threshold_days" db:"weekly_threshold_days"`
	MonthlyThresholdDays   int       `json:"monthly_threshold_days" db:"monthly_threshold_days"`
	AdditionalDriverFee    float64   `json:"additional_driver_fee" db:"additional_driver_fee"`
	StudentDiscountPercent float64   `json:"student_discount_percent" db:"student_discount_percent"`
	MaxAdditionalDrivers   int       `json:"max_additional_drivers" db:"max_additional_drivers"`
	StorePickupAddress     string    `json:"store_pickup_address" db:"store_pickup_address"`
	UpdatedAt              time.Time `json:"updated_at" db:"updated_at"`
}
