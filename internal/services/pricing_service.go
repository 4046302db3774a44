package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ErrPricingUnavailable is the user-safe message shown when the pricing
// function fails. Raw database errors are logged, never surfaced.
const ErrPricingUnavailable = "Unable to calculate pricing. Please try again."

// PricingService wraps the calculate_booking_total database function.
// Pricing is authoritative server truth: this service only requests and
// returns the breakdown, never computes it.
type PricingService struct {
	repo   *database.PricingRepository
	logger *logrus.Logger
}

// NewPricingService creates a new PricingService
func NewPricingService(repo *database.PricingRepository, logger *logrus.Logger) *PricingService {
	return &PricingService{
		repo:   repo,
		logger: logger,
	}
}

// PricingInputs is the tuple a snapshot is valid for. A change to any
// field invalidates the snapshot and requires a refetch.
type PricingInputs struct {
	VehicleID             uuid.UUID
	PickupDate            string // RFC3339
	ReturnDate            string // RFC3339
	IsStudent             bool
	DeliveryFee           float64
	AdditionalDriverCount int
}

// Calculate fetches the price breakdown for the given inputs
func (s *PricingService) Calculate(in PricingInputs) (*models.BookingTotal, error) {
	pickupAt, err := time.Parse(time.RFC3339, in.PickupDate)
	if err != nil {
		return nil, fmt.Errorf("invalid pickup date")
	}
	returnAt, err := time.Parse(time.RFC3339, in.ReturnDate)
	if err != nil {
		return nil, fmt.Errorf("invalid return date")
	}

	total, err := s.repo.CalculateTotal(
		in.VehicleID, pickupAt, returnAt,
		in.IsStudent, in.DeliveryFee, in.AdditionalDriverCount,
	)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"vehicle_id":  in.VehicleID,
			"pickup_date": in.PickupDate,
			"return_date": in.ReturnDate,
		}).WithError(err).Error("Pricing calculation failed")
		return nil, fmt.Errorf(ErrPricingUnavailable)
	}

	return total, nil
}
