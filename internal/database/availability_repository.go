package database

import (
	"time"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// AvailabilityRepository reads the holiday and closure calendar
// (store_closures table). Booking overlaps come from BookingRepository.
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// storeClosure is one row of the closure calendar
type storeClosure struct {
	Date   time.Time
	Kind   string
	Detail string
}

// GetClosures returns holiday/closure dates from today through the
// given horizon, as structured block reasons keyed by date
func (r *AvailabilityRepository) GetClosures(horizonDays int) ([]models.BlockedDate, error) {
	query := `
		SELECT closure_date, kind, detail
		FROM store_closures
		WHERE closure_date >= CURRENT_DATE
		  AND closure_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		ORDER BY closure_date
	`

	rows, err := r.db.Query(query, horizonDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocked := []models.BlockedDate{}
	for rows.Next() {
		var c storeClosure
		if err := rows.Scan(&c.Date, &c.Kind, &c.Detail); err != nil {
			return nil, err
		}

		kind := models.BlockKindClosure
		if c.Kind == "holiday" {
			kind = models.BlockKindHoliday
		}

		blocked = append(blocked, models.BlockedDate{
			Date: c.Date.Format("2006-01-02"),
			Reason: models.BlockReason{
				Kind:   kind,
				Detail: c.Detail,
			},
		})
	}

	return blocked, rows.Err()
}
