package services

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/pkg/checkout"
)

// BookingService handles the durable side of bookings: the my-bookings
// listing, cancellation, and the payment webhook that confirms them
type BookingService struct {
	bookings *database.BookingRepository
	checkout *checkout.Client
	audit    *AuditService
	logger   *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(bookings *database.BookingRepository, checkoutClient *checkout.Client, audit *AuditService, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		checkout: checkoutClient,
		audit:    audit,
		logger:   logger,
	}
}

// GetUserBookings returns all bookings for a user, newest first
func (s *BookingService) GetUserBookings(userID uuid.UUID) (*models.BookingListResponse, error) {
	bookings, err := s.bookings.GetByUserID(userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list bookings")
		return nil, fmt.Errorf("unable to load bookings. Please try again")
	}

	return &models.BookingListResponse{
		Bookings: bookings,
		Total:    len(bookings),
	}, nil
}

// GetBooking returns one booking, enforcing ownership
func (s *BookingService) GetBooking(bookingID, userID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("booking not found")
		}
		s.logger.WithError(err).Error("Failed to load booking")
		return nil, fmt.Errorf("unable to load booking. Please try again")
	}

	if booking.UserID != userID {
		return nil, fmt.Errorf("unauthorized: booking belongs to another user")
	}

	return booking, nil
}

// CancelBooking cancels a booking the renter still may cancel
func (s *BookingService) CancelBooking(bookingID, userID uuid.UUID, reason, ipAddress, userAgent string) (*models.Booking, error) {
	booking, err := s.GetBooking(bookingID, userID)
	if err != nil {
		return nil, err
	}

	if !booking.CanCancel() {
		return nil, fmt.Errorf("booking can no longer be cancelled")
	}

	if err := s.bookings.Cancel(bookingID, reason); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
		}).WithError(err).Error("Failed to cancel booking")
		return nil, fmt.Errorf("unable to cancel booking. Please try again")
	}

	if err := s.audit.LogBookingCancellation(userID, bookingID, reason, ipAddress, userAgent); err != nil {
		s.logger.WithError(err).Warn("Failed to audit booking cancellation")
	}

	return s.bookings.GetByID(bookingID)
}

// HandlePaymentWebhook processes a payment notification from the
// checkout gateway. The signature covers the session ID and status; a
// mismatch rejects the request before any lookup.
func (s *BookingService) HandlePaymentWebhook(req *models.PaymentWebhookRequest, ipAddress string) error {
	// 1. Verify the signature
	if !s.checkout.VerifyWebhookSignature(req.CheckoutSessionID, req.Status, req.Signature) {
		s.logger.WithFields(logrus.Fields{
			"checkout_session_id": req.CheckoutSessionID,
			"ip_address":          ipAddress,
		}).Warn("Rejected payment webhook with invalid signature")
		return fmt.Errorf("invalid webhook signature")
	}

	// 2. Find the booking the session was opened for
	booking, err := s.bookings.GetByCheckoutSessionID(req.CheckoutSessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("booking not found")
		}
		s.logger.WithError(err).Error("Failed to look up booking for webhook")
		return fmt.Errorf("unable to process webhook")
	}

	// 3. Map the gateway status. Repeated notifications for a booking
	// already in the target state are acknowledged without a write.
	var paymentStatus models.BookingPaymentStatus
	switch req.Status {
	case "paid":
		paymentStatus = models.PaymentStatusPaid
	case "failed", "expired":
		paymentStatus = models.PaymentStatusFailed
	default:
		return fmt.Errorf("unknown payment status: %s", req.Status)
	}

	if booking.PaymentStatus == paymentStatus {
		return nil
	}

	// A late failed/expired notification must not downgrade a booking
	// the gateway already reported paid
	if booking.PaymentStatus == models.PaymentStatusPaid && paymentStatus == models.PaymentStatusFailed {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"status":     req.Status,
		}).Warn("Ignoring out-of-order payment webhook for paid booking")
		return nil
	}

	if err := s.bookings.UpdatePaymentStatus(booking.ID, paymentStatus, req.PaymentReference); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"status":     req.Status,
		}).WithError(err).Error("Failed to record payment status")
		return fmt.Errorf("unable to process webhook")
	}

	if err := s.audit.LogPaymentWebhook(booking.ID, req.Status, req.PaymentReference, ipAddress); err != nil {
		s.logger.WithError(err).Warn("Failed to audit payment webhook")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"booking_reference": booking.BookingReference,
		"payment_status":    paymentStatus,
	}).Info("Payment webhook processed")

	return nil
}

// referenceAlphabet excludes ambiguous characters (0/O, 1/I)
const referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateBookingReference produces a customer-facing reference like
// "4AR-7KQ2M9"
func GenerateBookingReference() (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(referenceAlphabet)))

	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}

	return "4AR-" + string(suffix), nil
}
