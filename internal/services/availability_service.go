package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ErrAvailabilityUnavailable is the user-safe message for availability
// fetch failures
const ErrAvailabilityUnavailable = "Unable to load vehicle availability. Please try again."

// AvailabilityService builds the per-vehicle blocked-date index from
// existing bookings and the holiday/closure calendar. The index is
// fetched once per wizard session and queried synchronously afterwards.
type AvailabilityService struct {
	bookings *database.BookingRepository
	closures *database.AvailabilityRepository
	horizon  int // Days of calendar to index
	logger   *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	bookings *database.BookingRepository,
	closures *database.AvailabilityRepository,
	horizonDays int,
	logger *logrus.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		bookings: bookings,
		closures: closures,
		horizon:  horizonDays,
		logger:   logger,
	}
}

// BuildIndex assembles the blocked-date index for a vehicle. Booking
// blocks carry the booking reference in their detail; holiday and
// closure blocks carry the calendar detail.
func (s *AvailabilityService) BuildIndex(vehicleID uuid.UUID) (*models.AvailabilityIndex, error) {
	index := &models.AvailabilityIndex{
		VehicleID: vehicleID.String(),
		Blocked:   make(map[string]models.BlockReason),
		FetchedAt: time.Now(),
	}

	// 1. Closure calendar (holidays + ad-hoc closures)
	closures, err := s.closures.GetClosures(s.horizon)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load closure calendar")
		return nil, fmt.Errorf(ErrAvailabilityUnavailable)
	}
	for _, blocked := range closures {
		index.Blocked[blocked.Date] = blocked.Reason
	}

	// 2. Existing bookings. Booking blocks take precedence over holidays
	// on the same date because only booking blocks conflict with a
	// range selection.
	bookings, err := s.bookings.GetBlockingDatesByVehicle(vehicleID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"vehicle_id": vehicleID,
		}).WithError(err).Error("Failed to load vehicle bookings")
		return nil, fmt.Errorf(ErrAvailabilityUnavailable)
	}

	for _, booking := range bookings {
		detail := fmt.Sprintf("Vehicle already booked %s to %s",
			booking.PickupDate.Format("Jan 2"), booking.ReturnDate.Format("Jan 2"))

		for day := dateOnly(booking.PickupDate); !day.After(dateOnly(booking.ReturnDate)); day = day.AddDate(0, 0, 1) {
			index.Blocked[day.Format("2006-01-02")] = models.BlockReason{
				Kind:   models.BlockKindBooking,
				Detail: detail,
			}
		}
	}

	return index, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
