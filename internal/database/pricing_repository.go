package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// PricingRepository wraps the calculate_booking_total database function.
// Pricing math lives entirely in the database; this repository only
// invokes the function and scans the breakdown.
type PricingRepository struct {
	db DB
}

// NewPricingRepository creates a new PricingRepository
func NewPricingRepository(db DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// CalculateTotal invokes calculate_booking_total for the given inputs
// and returns the authoritative price breakdown
func (r *PricingRepository) CalculateTotal(
	vehicleID uuid.UUID,
	pickupDate, returnDate time.Time,
	isStudent bool,
	deliveryFee float64,
	additionalDriverCount int,
) (*models.BookingTotal, error) {
	query := `
		SELECT rental_days, rental_type, base_rate, base_cost,
			   delivery_fee, additional_driver_count, additional_driver_cost,
			   student_discount, subtotal, tax_amount, total_amount, currency
		FROM calculate_booking_total($1, $2, $3, $4, $5, $6)
	`

	total := &models.BookingTotal{}
	err := r.db.QueryRow(
		query,
		vehicleID, pickupDate, returnDate, isStudent, deliveryFee, additionalDriverCount,
	).Scan(
		&total.RentalDays, &total.RentalType, &total.BaseRate, &total.BaseCost,
		&total.DeliveryFee, &total.AdditionalDriverCount, &total.AdditionalDriverCost,
		&total.StudentDiscount, &total.Subtotal, &total.TaxAmount, &total.TotalAmount,
		&total.Currency,
	)
	if err != nil {
		return nil, err
	}

	total.CalculatedAt = time.Now()
	return total, nil
}
