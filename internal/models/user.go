package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// User represents a rental customer account.
// Credentials live with the hosted auth provider; this row holds the
// profile data the booking flow reads and best-effort writes.
type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	Phone            NullString `json:"phone,omitempty" db:"phone"`
	FirstName        NullString `json:"first_name,omitempty" db:"first_name"`
	LastName         NullString `json:"last_name,omitempty" db:"last_name"`
	DateOfBirth      NullString `json:"date_of_birth,omitempty" db:"date_of_birth"`
	LicenseNumber    NullString `json:"license_number,omitempty" db:"license_number"`
	LicenseState     NullString `json:"license_state,omitempty" db:"license_state"`
	Address          NullString `json:"address,omitempty" db:"address"`
	City             NullString `json:"city,omitempty" db:"city"`
	ZipCode          NullString `json:"zip_code,omitempty" db:"zip_code"`
	IsStudent        bool       `json:"is_student" db:"is_student"`
	StudentIDURL     NullString `json:"student_id_url,omitempty" db:"student_id_url"`
	ProfileCompleted bool       `json:"profile_completed" db:"profile_completed"`
	Status           string     `json:"status" db:"status"`
	LastLoginAt      NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// UpdateProfileRequest is the payload for PUT /user/profile and for the
// best-effort profile sync performed during checkout submission
type UpdateProfileRequest struct {
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

// Validate validates the profile update request
func (r *UpdateProfileRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" && strings.TrimSpace(r.LastName) == "" &&
		strings.TrimSpace(r.Phone) == "" && strings.TrimSpace(r.LicenseNumber) == "" {
		return fmt.Errorf("at least one profile field is required")
	}
	if r.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
			return fmt.Errorf("date_of_birth must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         int64         `json:"id" db:"id"`
	UserID     uuid.NullUUID `json:"user_id,omitempty" db:"user_id"`
	Action     string        `json:"action" db:"action"`
	EntityType NullString    `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   uuid.NullUUID `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  NullString    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString    `json:"user_agent,omitempty" db:"user_agent"`
	Details    NullString    `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
