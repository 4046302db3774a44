package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, booking_reference, user_id,
	vehicle_id, vehicle_name, vehicle_image_url,
	pickup_date, return_date,
	pickup_type, pickup_location, delivery_city, delivery_location_id,
	delivery_fee, delivery_time_slot,
	is_student, pricing, total_amount, drivers,
	status, payment_status, checkout_session_id, payment_reference,
	confirmed_at, cancelled_at, created_at, updated_at`

// Create inserts a new booking in pending_payment state
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, booking_reference, user_id,
			vehicle_id, vehicle_name, vehicle_image_url,
			pickup_date, return_date,
			pickup_type, pickup_location, delivery_city, delivery_location_id,
			delivery_fee, delivery_time_slot,
			is_student, pricing, total_amount, drivers,
			status, payment_status, checkout_session_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19::booking_status, $20::booking_payment_status, $21
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.BookingReference, booking.UserID,
		booking.VehicleID, booking.VehicleName, booking.VehicleImageURL,
		booking.PickupDate, booking.ReturnDate,
		booking.PickupType, booking.PickupLocation, booking.DeliveryCity, booking.DeliveryLocation,
		booking.DeliveryFee, booking.DeliveryTimeSlot,
		booking.IsStudent, booking.Pricing, booking.TotalAmount, booking.Drivers,
		booking.Status, booking.PaymentStatus, booking.CheckoutSessionID,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	return err
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	return r.scanBooking(r.db.QueryRow(query, bookingID))
}

// GetByReference retrieves a booking by its public booking reference
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = $1
	`

	return r.scanBooking(r.db.QueryRow(query, reference))
}

// GetByCheckoutSessionID retrieves the booking attached to a checkout session
func (r *BookingRepository) GetByCheckoutSessionID(sessionID string) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE checkout_session_id = $1
	`

	return r.scanBooking(r.db.QueryRow(query, sessionID))
}

// GetByUserID retrieves all bookings for a user, newest first
func (r *BookingRepository) GetByUserID(userID uuid.UUID) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetBlockingDatesByVehicle returns the pickup/return windows of bookings
// that make dates unavailable (anything not cancelled or failed)
func (r *BookingRepository) GetBlockingDatesByVehicle(vehicleID uuid.UUID) ([]models.Booking, error) {
	query := `
		SELECT id, booking_reference, pickup_date, return_date
		FROM bookings
		WHERE vehicle_id = $1
		  AND status NOT IN ('cancelled', 'completed')
		  AND payment_status != 'failed'
		  AND return_date >= CURRENT_DATE
		ORDER BY pickup_date
	`

	rows, err := r.db.Query(query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.BookingReference, &b.PickupDate, &b.ReturnDate); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// UpdatePaymentStatus updates payment state from the gateway webhook.
// A 'paid' notification also confirms the booking.
func (r *BookingRepository) UpdatePaymentStatus(bookingID uuid.UUID, status models.BookingPaymentStatus, reference string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2::booking_payment_status,
			payment_reference = NULLIF($3, ''),
			status = CASE WHEN $2 = 'paid' THEN 'confirmed'::booking_status ELSE status END,
			confirmed_at = CASE WHEN $2 = 'paid' THEN NOW() ELSE confirmed_at END,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, status, reference)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// Cancel cancels a booking
func (r *BookingRepository) Cancel(bookingID uuid.UUID, reason string) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled',
			cancellation_reason = NULLIF($2, ''),
			cancelled_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, reason)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// scanBooking scans a single booking
func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}

	err := row.Scan(
		&booking.ID, &booking.BookingReference, &booking.UserID,
		&booking.VehicleID, &booking.VehicleName, &booking.VehicleImageURL,
		&booking.PickupDate, &booking.ReturnDate,
		&booking.PickupType, &booking.PickupLocation, &booking.DeliveryCity, &booking.DeliveryLocation,
		&booking.DeliveryFee, &booking.DeliveryTimeSlot,
		&booking.IsStudent, &booking.Pricing, &booking.TotalAmount, &booking.Drivers,
		&booking.Status, &booking.PaymentStatus, &booking.CheckoutSessionID, &booking.PaymentReference,
		&booking.ConfirmedAt, &booking.CancelledAt, &booking.CreatedAt, &booking.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return booking, nil
}

// scanBookings scans multiple bookings from rows
func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID, &booking.BookingReference, &booking.UserID,
			&booking.VehicleID, &booking.VehicleName, &booking.VehicleImageURL,
			&booking.PickupDate, &booking.ReturnDate,
			&booking.PickupType, &booking.PickupLocation, &booking.DeliveryCity, &booking.DeliveryLocation,
			&booking.DeliveryFee, &booking.DeliveryTimeSlot,
			&booking.IsStudent, &booking.Pricing, &booking.TotalAmount, &booking.Drivers,
			&booking.Status, &booking.PaymentStatus, &booking.CheckoutSessionID, &booking.PaymentReference,
			&booking.ConfirmedAt, &booking.CancelledAt, &booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// scanner interface for QueryRow and Rows
type scanner interface {
	Scan(dest ...interface{}) error
}
