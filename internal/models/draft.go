package models

import "strings"

// ============================================================================
// BOOKING DRAFT (wizard session state, never persisted to the database)
// ============================================================================

// PickupType represents how the renter receives the vehicle
type PickupType string

const (
	PickupTypeStore    PickupType = "store"
	PickupTypeDelivery PickupType = "delivery"
)

// RentalType categorizes a rental by its length for pricing purposes
type RentalType string

const (
	RentalTypeDaily   RentalType = "daily"
	RentalTypeWeekly  RentalType = "weekly"
	RentalTypeMonthly RentalType = "monthly"
)

// DriverData holds the personal, license and address fields collected for
// every driver on a booking. All ten fields are required for the primary
// driver before the wizard may advance past the driver step.
type DriverData struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"` // "2006-01-02"
	LicenseNumber string `json:"license_number"`
	LicenseState  string `json:"license_state"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ZipCode       string `json:"zip_code"`
}

// IsComplete reports whether every field is non-blank after trimming
func (d *DriverData) IsComplete() bool {
	fields := []string{
		d.FirstName, d.LastName, d.Email, d.Phone, d.DateOfBirth,
		d.LicenseNumber, d.LicenseState, d.Address, d.City, d.ZipCode,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no field has been entered yet
func (d *DriverData) IsEmpty() bool {
	fields := []string{
		d.FirstName, d.LastName, d.Email, d.Phone, d.DateOfBirth,
		d.LicenseNumber, d.LicenseState, d.Address, d.City, d.ZipCode,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// AdditionalDriver is a driver beyond the primary. SameAddressAsPrimary
// records that the address fields were copied from the primary driver at
// the moment the flag was set; it is a point-in-time copy, not a live
// mirror, and editing any address field clears the flag.
type AdditionalDriver struct {
	DriverData
	SameAddressAsPrimary bool `json:"same_address_as_primary"`
}

// BookingDraft is the in-progress booking assembled across the wizard.
// It lives only inside a wizard session and is discarded when the session
// closes; a durable Booking exists only after checkout confirmation.
type BookingDraft struct {
	VehicleID string `json:"vehicle_id"`

	// Dates (RFC3339)
	PickupDate string `json:"pickup_date"`
	ReturnDate string `json:"return_date"`

	// Student discount
	IsStudent    bool   `json:"is_student"`
	StudentIDURL string `json:"student_id_url,omitempty"`

	// Pickup / delivery. While PickupType is "store" the delivery fields
	// are forced empty; switching type resets them in the same update.
	PickupType         PickupType `json:"pickup_type"`
	PickupLocation     string     `json:"pickup_location"`
	DeliveryCity       string     `json:"delivery_city"`
	DeliveryLocationID string     `json:"delivery_location_id"`
	DeliveryFee        float64    `json:"delivery_fee"`
	DeliveryTimeSlot   string     `json:"delivery_time_slot"`

	// Drivers
	PrimaryDriver     DriverData         `json:"primary_driver"`
	AdditionalDrivers []AdditionalDriver `json:"additional_drivers"`
}

// HasDriverData reports whether the renter has entered any driver fields.
// Used for the discard-confirmation guard when closing mid-wizard.
func (d *BookingDraft) HasDriverData() bool {
	if !d.PrimaryDriver.IsEmpty() {
		return true
	}
	for i := range d.AdditionalDrivers {
		if !d.AdditionalDrivers[i].IsEmpty() {
			return true
		}
	}
	return false
}

// DateValidationResult is derived state, recomputed on every date change
type DateValidationResult struct {
	IsValid    bool       `json:"is_valid"`
	Errors     []string   `json:"errors,omitempty"`
	RentalDays int        `json:"rental_days"`
	RentalType RentalType `json:"rental_type,omitempty"`
}

// DriverInfoSnapshot is the session-scoped cache of the primary driver's
// non-sensitive fields, written fire-and-forget on every draft change so a
// page reload does not lose entry. Email is deliberately excluded.
type DriverInfoSnapshot struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"`
	LicenseNumber string `json:"license_number"`
	LicenseState  string `json:"license_state"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ZipCode       string `json:"zip_code"`
}

// SnapshotFromDriver extracts the cacheable fields from a primary driver
func SnapshotFromDriver(d DriverData) DriverInfoSnapshot {
	return DriverInfoSnapshot{
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Phone:         d.Phone,
		DateOfBirth:   d.DateOfBirth,
		LicenseNumber: d.LicenseNumber,
		LicenseState:  d.LicenseState,
		Address:       d.Address,
		City:          d.City,
		ZipCode:       d.ZipCode,
	}
}

// ApplyTo seeds a driver record from the snapshot without touching email
func (s DriverInfoSnapshot) ApplyTo(d *DriverData) {
	d.FirstName = s.FirstName
	d.LastName = s.LastName
	d.Phone = s.Phone
	d.DateOfBirth = s.DateOfBirth
	d.LicenseNumber = s.LicenseNumber
	d.LicenseState = s.LicenseState
	d.Address = s.Address
	d.City = s.City
	d.ZipCode = s.ZipCode
}
