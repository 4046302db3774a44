package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/utils"
)

// AuditService records booking security events to the audit_logs table
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID
	Action     string // e.g. "checkout_submitted", "booking_cancelled"
	EntityType string // "booking", "wizard_session", "user"
	EntityID   *uuid.UUID
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogCheckoutSubmission logs a checkout submission attempt with parsed
// device information
func (s *AuditService) LogCheckoutSubmission(userID uuid.UUID, sessionID uuid.UUID, bookingRef, ipAddress, userAgent string, success bool, reason string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	details := map[string]interface{}{
		"booking_reference": bookingRef,
		"success":           success,
		"device_info":       deviceInfo,
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := "checkout_failed"
	if success {
		action = "checkout_submitted"
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "wizard_session",
		EntityID:   &sessionID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogHoneypotTrip logs a submission that filled the hidden form field
func (s *AuditService) LogHoneypotTrip(userID uuid.UUID, ipAddress, userAgent string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "honeypot_trip",
		EntityType: "wizard_session",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"device_info": deviceInfo,
		},
	})
}

// LogBookingCancellation logs a renter-initiated cancellation
func (s *AuditService) LogBookingCancellation(userID, bookingID uuid.UUID, reason, ipAddress, userAgent string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	details := map[string]interface{}{
		"device_info": deviceInfo,
	}
	if reason != "" {
		details["reason"] = reason
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "booking_cancelled",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogPaymentWebhook logs a gateway payment notification
func (s *AuditService) LogPaymentWebhook(bookingID uuid.UUID, status, paymentReference, ipAddress string) error {
	return s.logEvent(AuditEvent{
		UserID:     nil, // Gateway callback, no user session
		Action:     "payment_webhook",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		Details: map[string]interface{}{
			"status":            status,
			"payment_reference": paymentReference,
		},
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	_, err = s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		details,
	)

	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}
