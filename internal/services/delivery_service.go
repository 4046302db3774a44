package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ErrDeliveryUnavailable is the user-safe message for delivery lookup
// failures
const ErrDeliveryUnavailable = "Unable to load delivery locations. Please try again."

// DeliveryService wraps the two-level city -> location lookup
type DeliveryService struct {
	repo   *database.DeliveryLocationRepository
	logger *logrus.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(repo *database.DeliveryLocationRepository, logger *logrus.Logger) *DeliveryService {
	return &DeliveryService{
		repo:   repo,
		logger: logger,
	}
}

// GetCities returns the cities offering delivery
func (s *DeliveryService) GetCities() ([]models.CityOption, error) {
	cities, err := s.repo.GetCities()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load delivery cities")
		return nil, fmt.Errorf(ErrDeliveryUnavailable)
	}
	return cities, nil
}

// GetLocationsByCity returns the active delivery locations in a city
func (s *DeliveryService) GetLocationsByCity(city string) ([]models.DeliveryLocation, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}

	locations, err := s.repo.GetByCity(city)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"city": city,
		}).WithError(err).Error("Failed to load delivery locations")
		return nil, fmt.Errorf(ErrDeliveryUnavailable)
	}

	return locations, nil
}

// ResolveLocation looks up a delivery location by ID and validates it
// against the selected city
func (s *DeliveryService) ResolveLocation(locationID string, city string) (*models.DeliveryLocation, error) {
	id, err := uuid.Parse(locationID)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery location")
	}

	location, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"location_id": locationID,
		}).WithError(err).Error("Failed to resolve delivery location")
		return nil, fmt.Errorf(ErrDeliveryUnavailable)
	}

	if !location.Active {
		return nil, fmt.Errorf("delivery location is no longer available")
	}
	if !strings.EqualFold(location.City, city) {
		return nil, fmt.Errorf("delivery location is not in the selected city")
	}

	return location, nil
}
