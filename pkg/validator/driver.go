// Package validator validates renter-entered driver fields before they
// reach the booking flow.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidPhoneLength indicates phone number is not 10 digits
	ErrInvalidPhoneLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPhoneFormat indicates phone number contains invalid characters
	ErrInvalidPhoneFormat = errors.New("phone number can only contain digits")

	// ErrInvalidZip indicates an invalid US ZIP code
	ErrInvalidZip = errors.New("zip code must be 5 digits (12345) or ZIP+4 (12345-6789)")

	// ErrInvalidState indicates an unrecognized state abbreviation
	ErrInvalidState = errors.New("license state must be a two-letter US state abbreviation")

	// ErrInvalidDateOfBirth indicates an unparseable date of birth
	ErrInvalidDateOfBirth = errors.New("date of birth must be in YYYY-MM-DD format")

	// ErrUnderage indicates the driver is below the minimum rental age
	ErrUnderage = errors.New("drivers must be at least 21 years old")
)

// minimumDriverAge is the youngest age a listed driver may be
const minimumDriverAge = 21

// stateAbbreviations covers the 50 states plus DC
var stateAbbreviations = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "DC": true, "FL": true, "GA": true, "HI": true,
	"ID": true, "IL": true, "IN": true, "IA": true, "KS": true, "KY": true,
	"LA": true, "ME": true, "MD": true, "MA": true, "MI": true, "MN": true,
	"MS": true, "MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true,
	"TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true,
	"WV": true, "WI": true, "WY": true,
}

var digitsOnly = regexp.MustCompile(`^\d+$`)
var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// DriverValidator validates driver contact and license fields
type DriverValidator struct{}

// NewDriverValidator creates a new driver validator instance
func NewDriverValidator() *DriverValidator {
	return &DriverValidator{}
}

// ValidatePhone validates a US phone number.
// Accepts formats like 9405551234, (940) 555-1234 or +1 940 555 1234.
// Returns the sanitized number (digits only) and error if invalid.
func (v *DriverValidator) ValidatePhone(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.SanitizePhone(phone)

	if !digitsOnly.MatchString(sanitized) {
		return "", ErrInvalidPhoneFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidPhoneLength
	}

	return sanitized, nil
}

// SanitizePhone removes separators and a leading country code
func (v *DriverValidator) SanitizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")

	// Strip the US country code if present
	if strings.HasPrefix(phone, "1") && len(phone) == 11 {
		phone = phone[1:]
	}

	return phone
}

// FormatPhone formats a phone number in the standard display format: (XXX) XXX-XXXX
func (v *DriverValidator) FormatPhone(phone string) (string, error) {
	sanitized, err := v.ValidatePhone(phone)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("(%s) %s-%s",
		sanitized[0:3],
		sanitized[3:6],
		sanitized[6:10],
	), nil
}

// ValidateZip validates a US ZIP or ZIP+4 code
func (v *DriverValidator) ValidateZip(zip string) error {
	if !zipPattern.MatchString(strings.TrimSpace(zip)) {
		return ErrInvalidZip
	}
	return nil
}

// ValidateLicenseState validates a two-letter state abbreviation.
// Returns the normalized (uppercase) abbreviation.
func (v *DriverValidator) ValidateLicenseState(state string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(state))
	if !stateAbbreviations[normalized] {
		return "", ErrInvalidState
	}
	return normalized, nil
}

// ValidateDateOfBirth validates a YYYY-MM-DD date of birth and the
// minimum rental age
func (v *DriverValidator) ValidateDateOfBirth(dob string, now time.Time) error {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(dob))
	if err != nil {
		return ErrInvalidDateOfBirth
	}

	cutoff := now.AddDate(-minimumDriverAge, 0, 0)
	if parsed.After(cutoff) {
		return ErrUnderage
	}

	return nil
}

// IsValidPhone is a convenience method that returns true if phone is valid
func (v *DriverValidator) IsValidPhone(phone string) bool {
	_, err := v.ValidatePhone(phone)
	return err == nil
}
