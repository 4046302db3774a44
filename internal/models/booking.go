package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// BOOKING TYPES & STATUSES (matches DB ENUMs)
// ============================================================================

// BookingStatus represents the status of a rental booking
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment" // Checkout session created, awaiting payment
	BookingStatusConfirmed      BookingStatus = "confirmed"       // Payment captured
	BookingStatusActive         BookingStatus = "active"          // Vehicle picked up
	BookingStatusCompleted      BookingStatus = "completed"       // Vehicle returned
	BookingStatusCancelled      BookingStatus = "cancelled"
)

// BookingPaymentStatus represents the payment status of a booking
// Matches PostgreSQL ENUM: booking_payment_status
type BookingPaymentStatus string

const (
	PaymentStatusPending  BookingPaymentStatus = "pending"
	PaymentStatusPaid     BookingPaymentStatus = "paid"
	PaymentStatusFailed   BookingPaymentStatus = "failed"
	PaymentStatusRefunded BookingPaymentStatus = "refunded"
)

// ============================================================================
// JSONB PAYLOAD TYPES
// ============================================================================

// BookingTotal is the authoritative price breakdown returned by the
// calculate_booking_total database function. It is never recomputed in Go;
// the server stores and displays it verbatim.
type BookingTotal struct {
	RentalDays            int        `json:"rental_days"`
	RentalType            RentalType `json:"rental_type"`
	BaseRate              float64    `json:"base_rate"` // Rate applied per day/week/month
	BaseCost              float64    `json:"base_cost"`
	DeliveryFee           float64    `json:"delivery_fee"`
	AdditionalDriverCount int        `json:"additional_driver_count"`
	AdditionalDriverCost  float64    `json:"additional_driver_cost"`
	StudentDiscount       float64    `json:"student_discount"`
	Subtotal              float64    `json:"subtotal"`
	TaxAmount             float64    `json:"tax_amount"`
	TotalAmount           float64    `json:"total_amount"`
	Currency              string     `json:"currency"`
	CalculatedAt          time.Time  `json:"calculated_at"`
}

func (t BookingTotal) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *BookingTotal) Scan(value interface{}) error {
	if value == nil {
		*t = BookingTotal{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for BookingTotal")
	}
	return json.Unmarshal(bytes, t)
}

// BookingDrivers stores the driver records of a booking in JSONB.
// Additional drivers are stored with address fields already resolved and
// the same-address flag stripped.
type BookingDrivers struct {
	Primary    DriverData   `json:"primary"`
	Additional []DriverData `json:"additional,omitempty"`
}

func (d BookingDrivers) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *BookingDrivers) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for BookingDrivers")
	}
	return json.Unmarshal(bytes, d)
}

// ============================================================================
// BOOKING MODEL (bookings table)
// ============================================================================

// Booking represents a durable rental booking, created when a checkout
// session is opened and confirmed by the payment webhook
type Booking struct {
	ID               uuid.UUID `json:"id" db:"id"`
	BookingReference string    `json:"booking_reference" db:"booking_reference"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`

	// Vehicle snapshot (denormalized for display and receipts)
	VehicleID       uuid.UUID  `json:"vehicle_id" db:"vehicle_id"`
	VehicleName     string     `json:"vehicle_name" db:"vehicle_name"`
	VehicleImageURL NullString `json:"vehicle_image_url,omitempty" db:"vehicle_image_url"`

	// Rental window
	PickupDate time.Time `json:"pickup_date" db:"pickup_date"`
	ReturnDate time.Time `json:"return_date" db:"return_date"`

	// Pickup / delivery
	PickupType       PickupType    `json:"pickup_type" db:"pickup_type"`
	PickupLocation   string        `json:"pickup_location" db:"pickup_location"`
	DeliveryCity     NullString    `json:"delivery_city,omitempty" db:"delivery_city"`
	DeliveryLocation uuid.NullUUID `json:"delivery_location_id,omitempty" db:"delivery_location_id"`
	DeliveryFee      float64       `json:"delivery_fee" db:"delivery_fee"`
	DeliveryTimeSlot NullString    `json:"delivery_time_slot,omitempty" db:"delivery_time_slot"`

	// Pricing (copied verbatim from the snapshot at submission)
	IsStudent   bool         `json:"is_student" db:"is_student"`
	Pricing     BookingTotal `json:"pricing" db:"pricing"`
	TotalAmount float64      `json:"total_amount" db:"total_amount"`

	// Drivers
	Drivers BookingDrivers `json:"drivers" db:"drivers"`

	// Status + payment
	Status            BookingStatus        `json:"status" db:"status"`
	PaymentStatus     BookingPaymentStatus `json:"payment_status" db:"payment_status"`
	CheckoutSessionID NullString           `json:"checkout_session_id,omitempty" db:"checkout_session_id"`
	PaymentReference  NullString           `json:"payment_reference,omitempty" db:"payment_reference"`

	// Timestamps
	ConfirmedAt NullTime  `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CancelledAt NullTime  `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RentalDays returns the rental length recorded in the pricing snapshot
func (b *Booking) RentalDays() int {
	return b.Pricing.RentalDays
}

// CanCancel reports whether the renter may still cancel this booking
func (b *Booking) CanCancel() bool {
	switch b.Status {
	case BookingStatusPendingPayment, BookingStatusConfirmed:
		return time.Now().Before(b.PickupDate)
	default:
		return false
	}
}

// ============================================================================
// REQUEST/RESPONSE STRUCTS
// ============================================================================

// CancelBookingRequest is the payload for POST /bookings/:id/cancel
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// BookingListResponse wraps the my-bookings list
type BookingListResponse struct {
	Bookings []Booking `json:"bookings"`
	Total    int       `json:"total"`
}

// PaymentWebhookRequest is the checkout gateway's payment notification
type PaymentWebhookRequest struct {
	CheckoutSessionID string `json:"checkout_session_id" binding:"required"`
	Status            string `json:"status" binding:"required"` // "paid", "failed", "expired"
	PaymentReference  string `json:"payment_reference"`
	Signature         string `json:"signature"`
}
