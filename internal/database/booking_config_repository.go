package database

import (
	"github.com/fourarental/rental-booking-backend/internal/models"
)

// BookingConfigRepository reads the single-row booking_config table
type BookingConfigRepository struct {
	db DB
}

// NewBookingConfigRepository creates a new BookingConfigRepository
func NewBookingConfigRepository(db DB) *BookingConfigRepository {
	return &BookingConfigRepository{db: db}
}

// Get returns the current booking policy row
func (r *BookingConfigRepository) Get() (*models.BookingPolicy, error) {
	query := `
		SELECT id, min_lead_time_hours, max_advance_days, min_rental_days,
			   weekly_threshold_days, monthly_threshold_days,
			   additional_driver_fee, student_discount_percent,
			   max_additional_drivers, store_pickup_address, updated_at
		FROM booking_config
		ORDER BY id
		LIMIT 1
	`

	policy := &models.BookingPolicy{}
	err := r.db.QueryRow(query).Scan(
		&policy.ID, &policy.MinLeadTimeHours, &policy.MaxAdvanceDays, &policy.MinRentalDays,
		&policy.WeeklyThresholdDays, &policy.MonthlyThresholdDays,
		&policy.AdditionalDriverFee, &policy.StudentDiscountPercent,
		&policy.MaxAdditionalDrivers, &policy.StorePickupAddress, &policy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return policy, nil
}
