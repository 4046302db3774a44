package wizard

import (
	"fmt"
	"math"
	"time"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ValidateDates checks a pickup/return pair against the booking policy.
// Pure function of its inputs; recomputed on every date change.
func ValidateDates(pickup, returnDate string, policy *models.BookingPolicy, now time.Time) models.DateValidationResult {
	result := models.DateValidationResult{}

	if pickup == "" || returnDate == "" {
		result.Errors = append(result.Errors, "pickup and return dates are required")
		return result
	}

	pickupAt, err := time.Parse(time.RFC3339, pickup)
	if err != nil {
		result.Errors = append(result.Errors, "pickup date is not a valid timestamp")
		return result
	}

	returnAt, err := time.Parse(time.RFC3339, returnDate)
	if err != nil {
		result.Errors = append(result.Errors, "return date is not a valid timestamp")
		return result
	}

	if !returnAt.After(pickupAt) {
		result.Errors = append(result.Errors, "return date must be after pickup date")
		return result
	}

	rentalDays := int(math.Ceil(returnAt.Sub(pickupAt).Hours() / 24))
	result.RentalDays = rentalDays
	result.RentalType = classifyRental(rentalDays, policy)

	if pickupAt.Before(now.Add(time.Duration(policy.MinLeadTimeHours) * time.Hour)) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("pickup must be at least %d hours from now", policy.MinLeadTimeHours))
	}

	if pickupAt.After(now.AddDate(0, 0, policy.MaxAdvanceDays)) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("pickup cannot be more than %d days in advance", policy.MaxAdvanceDays))
	}

	// The minimum is enforced against the actual instants, not the
	// ceil-rounded day count, so a range short of the minimum by a few
	// hours does not round up and pass.
	if returnAt.Before(pickupAt.AddDate(0, 0, policy.MinRentalDays)) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("minimum rental length is %d day(s)", policy.MinRentalDays))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// classifyRental maps a rental length onto the pricing tier
func classifyRental(rentalDays int, policy *models.BookingPolicy) models.RentalType {
	switch {
	case policy.MonthlyThresholdDays > 0 && rentalDays >= policy.MonthlyThresholdDays:
		return models.RentalTypeMonthly
	case policy.WeeklyThresholdDays > 0 && rentalDays >= policy.WeeklyThresholdDays:
		return models.RentalTypeWeekly
	default:
		return models.RentalTypeDaily
	}
}
