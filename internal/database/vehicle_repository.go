package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// VehicleRepository handles database operations for the vehicles table
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `
	id, name, make, model, year, category, seats, transmission, fuel_type,
	daily_rate, weekly_rate, monthly_rate, image_url, features, description,
	status, created_at, updated_at`

// List returns available vehicles matching the optional filters
func (r *VehicleRepository) List(filter models.ListVehiclesFilter) ([]models.Vehicle, error) {
	query := `SELECT` + vehicleColumns + `
		FROM vehicles
		WHERE status = 'available'
	`

	args := []interface{}{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Seats > 0 {
		query += fmt.Sprintf(" AND seats >= $%d", argIdx)
		args = append(args, filter.Seats)
		argIdx++
	}
	if filter.MaxDaily > 0 {
		query += fmt.Sprintf(" AND daily_rate <= $%d", argIdx)
		args = append(args, filter.MaxDaily)
		argIdx++
	}

	query += " ORDER BY daily_rate, name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanVehicles(rows)
}

// GetByID retrieves a vehicle by ID regardless of status
func (r *VehicleRepository) GetByID(vehicleID uuid.UUID) (*models.Vehicle, error) {
	query := `SELECT` + vehicleColumns + `
		FROM vehicles
		WHERE id = $1
	`

	return r.scanVehicle(r.db.QueryRow(query, vehicleID))
}

// scanVehicle scans a single vehicle
func (r *VehicleRepository) scanVehicle(row scanner) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}

	err := row.Scan(
		&vehicle.ID, &vehicle.Name, &vehicle.Make, &vehicle.Model, &vehicle.Year,
		&vehicle.Category, &vehicle.Seats, &vehicle.Transmission, &vehicle.FuelType,
		&vehicle.DailyRate, &vehicle.WeeklyRate, &vehicle.MonthlyRate,
		&vehicle.ImageURL, &vehicle.Features, &vehicle.Description,
		&vehicle.Status, &vehicle.CreatedAt, &vehicle.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return vehicle, nil
}

// scanVehicles scans multiple vehicles from rows
func (r *VehicleRepository) scanVehicles(rows *sql.Rows) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}

	for rows.Next() {
		var vehicle models.Vehicle
		err := rows.Scan(
			&vehicle.ID, &vehicle.Name, &vehicle.Make, &vehicle.Model, &vehicle.Year,
			&vehicle.Category, &vehicle.Seats, &vehicle.Transmission, &vehicle.FuelType,
			&vehicle.DailyRate, &vehicle.WeeklyRate, &vehicle.MonthlyRate,
			&vehicle.ImageURL, &vehicle.Features, &vehicle.Description,
			&vehicle.Status, &vehicle.CreatedAt, &vehicle.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}
