package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// DeliveryLocationRepository handles the delivery_locations lookup table
type DeliveryLocationRepository struct {
	db DB
}

// NewDeliveryLocationRepository creates a new DeliveryLocationRepository
func NewDeliveryLocationRepository(db DB) *DeliveryLocationRepository {
	return &DeliveryLocationRepository{db: db}
}

// GetCities returns the distinct cities that have active delivery locations
func (r *DeliveryLocationRepository) GetCities() ([]models.CityOption, error) {
	query := `
		SELECT city, COUNT(*) AS location_count
		FROM delivery_locations
		WHERE active = true
		GROUP BY city
		ORDER BY city
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []models.CityOption{}
	for rows.Next() {
		var c models.CityOption
		if err := rows.Scan(&c.City, &c.LocationCount); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}

	return cities, rows.Err()
}

// GetByCity returns the active delivery locations within a city
func (r *DeliveryLocationRepository) GetByCity(city string) ([]models.DeliveryLocation, error) {
	query := `
		SELECT id, city, name, address, fee, time_slots, active, created_at, updated_at
		FROM delivery_locations
		WHERE city = $1 AND active = true
		ORDER BY name
	`

	rows, err := r.db.Query(query, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanLocations(rows)
}

// GetByID retrieves a single delivery location
func (r *DeliveryLocationRepository) GetByID(id uuid.UUID) (*models.DeliveryLocation, error) {
	query := `
		SELECT id, city, name, address, fee, time_slots, active, created_at, updated_at
		FROM delivery_locations
		WHERE id = $1
	`

	loc := &models.DeliveryLocation{}
	err := r.db.QueryRow(query, id).Scan(
		&loc.ID, &loc.City, &loc.Name, &loc.Address, &loc.Fee,
		&loc.TimeSlots, &loc.Active, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return loc, nil
}

// scanLocations scans multiple delivery locations from rows
func (r *DeliveryLocationRepository) scanLocations(rows *sql.Rows) ([]models.DeliveryLocation, error) {
	locations := []models.DeliveryLocation{}

	for rows.Next() {
		var loc models.DeliveryLocation
		err := rows.Scan(
			&loc.ID, &loc.City, &loc.Name, &loc.Address, &loc.Fee,
			&loc.TimeSlots, &loc.Active, &loc.CreatedAt, &loc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}
