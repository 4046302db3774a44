package wizard

import (
	"time"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ConflictResult is the outcome of scanning a date range against the
// vehicle's blocked-date index
type ConflictResult struct {
	// PickupBlocked / ReturnBlocked are set when the endpoint date itself
	// is unavailable for any reason; shown inline next to the field
	PickupBlocked *models.BlockReason `json:"pickup_blocked,omitempty"`
	ReturnBlocked *models.BlockReason `json:"return_blocked,omitempty"`

	// RangeConflict is set when a date strictly inside the range carries
	// a booking-kind block. Holidays and closures inside the range do not
	// conflict: the renter already holds the vehicle across them.
	RangeConflict *models.RangeConflict `json:"range_conflict,omitempty"`
}

// HasBlockingConflict reports whether the result blocks progression past
// the dates step
func (c ConflictResult) HasBlockingConflict() bool {
	return c.PickupBlocked != nil || c.ReturnBlocked != nil || c.RangeConflict != nil
}

// DetectConflicts scans a pickup/return pair against the availability
// index. Endpoint dates blocked for any reason are flagged; intermediate
// dates only conflict when blocked by an existing booking, and the first
// such date is named in the range-level warning.
func DetectConflicts(index *models.AvailabilityIndex, pickup, returnDate string) ConflictResult {
	result := ConflictResult{}

	pickupAt, err := time.Parse(time.RFC3339, pickup)
	if err != nil {
		return result
	}
	returnAt, err := time.Parse(time.RFC3339, returnDate)
	if err != nil {
		return result
	}

	result.PickupBlocked = index.GetBlockedReason(pickupAt.Format("2006-01-02"))
	result.ReturnBlocked = index.GetBlockedReason(returnAt.Format("2006-01-02"))

	// Scan strictly between the endpoints, day by day
	pickupDay := startOfDay(pickupAt)
	returnDay := startOfDay(returnAt)
	for day := pickupDay.AddDate(0, 0, 1); day.Before(returnDay); day = day.AddDate(0, 0, 1) {
		reason := index.GetBlockedReason(day.Format("2006-01-02"))
		if reason != nil && reason.IsBookingConflict() {
			result.RangeConflict = &models.RangeConflict{
				FirstConflictDate: day.Format("2006-01-02"),
				Detail:            reason.Detail,
			}
			break
		}
	}

	return result
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
