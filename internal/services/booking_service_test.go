package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourarental/rental-booking-backend/internal/config"
	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/pkg/checkout"
)

const testWebhookAPIKey = "test-api-key"

func setupBookingTest(t *testing.T) (*BookingService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway := checkout.NewClient(&config.CheckoutConfig{APIKey: testWebhookAPIKey}, logger)

	service := NewBookingService(
		database.NewBookingRepository(postgresDB),
		gateway,
		NewAuditService(postgresDB),
		logger,
	)

	cleanup := func() {
		db.Close()
	}

	return service, mock, cleanup
}

func signWebhook(sessionID, status string) string {
	mac := hmac.New(sha512.New, []byte(testWebhookAPIKey))
	fmt.Fprintf(mac, "%s|%s", sessionID, status)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBookingRow(t *testing.T, bookingID, userID uuid.UUID, sessionID string, status models.BookingStatus, paymentStatus models.BookingPaymentStatus, pickup time.Time) *sqlmock.Rows {
	t.Helper()

	pricing, err := json.Marshal(models.BookingTotal{RentalDays: 3, TotalAmount: 150})
	require.NoError(t, err)
	drivers, err := json.Marshal(models.BookingDrivers{})
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	return sqlmock.NewRows([]string{
		"id", "booking_reference", "user_id",
		"vehicle_id", "vehicle_name", "vehicle_image_url",
		"pickup_date", "return_date",
		"pickup_type", "pickup_location", "delivery_city", "delivery_location_id",
		"delivery_fee", "delivery_time_slot",
		"is_student", "pricing", "total_amount", "drivers",
		"status", "payment_status", "checkout_session_id", "payment_reference",
		"confirmed_at", "cancelled_at", "created_at", "updated_at",
	}).AddRow(
		bookingID, "4AR-7KQ2M9", userID,
		uuid.New(), "Toyota Camry", nil,
		pickup, pickup.AddDate(0, 0, 3),
		"store", "4A Rental - 1200 N Elm St, Denton, TX", nil, nil,
		0.0, nil,
		false, pricing, 150.0, drivers,
		string(status), string(paymentStatus), sessionID, nil,
		nil, nil, now, now,
	)
}

func TestHandlePaymentWebhook_InvalidSignature(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "paid",
		Signature:         "forged",
	}, "203.0.113.9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid webhook signature")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentWebhook_Paid(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_1").
		WillReturnRows(webhookBookingRow(t, bookingID, uuid.New(), "cs_1",
			models.BookingStatusPendingPayment, models.PaymentStatusPending, pickup))

	mock.ExpectExec("UPDATE bookings").
		WithArgs(bookingID, models.PaymentStatusPaid, "pay_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "paid",
		PaymentReference:  "pay_1",
		Signature:         signWebhook("cs_1", "paid"),
	}, "203.0.113.9")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentWebhook_ExpiredMapsToFailed(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_1").
		WillReturnRows(webhookBookingRow(t, bookingID, uuid.New(), "cs_1",
			models.BookingStatusPendingPayment, models.PaymentStatusPending, pickup))

	mock.ExpectExec("UPDATE bookings").
		WithArgs(bookingID, models.PaymentStatusFailed, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "expired",
		Signature:         signWebhook("cs_1", "expired"),
	}, "203.0.113.9")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentWebhook_Idempotent(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	// Booking already paid; a repeated notification is acknowledged
	// without a write
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_1").
		WillReturnRows(webhookBookingRow(t, bookingID, uuid.New(), "cs_1",
			models.BookingStatusConfirmed, models.PaymentStatusPaid, pickup))

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "paid",
		Signature:         signWebhook("cs_1", "paid"),
	}, "203.0.113.9")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentWebhook_NoDowngradeAfterPaid(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	// A late "expired" notification for a booking already paid is
	// acknowledged without a write
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_1").
		WillReturnRows(webhookBookingRow(t, bookingID, uuid.New(), "cs_1",
			models.BookingStatusConfirmed, models.PaymentStatusPaid, pickup))

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "expired",
		Signature:         signWebhook("cs_1", "expired"),
	}, "203.0.113.9")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentWebhook_UnknownStatus(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_1").
		WillReturnRows(webhookBookingRow(t, bookingID, uuid.New(), "cs_1",
			models.BookingStatusPendingPayment, models.PaymentStatusPending, pickup))

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "chargeback",
		Signature:         signWebhook("cs_1", "chargeback"),
	}, "203.0.113.9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown payment status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentWebhook_BookingNotFound(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_missing").
		WillReturnError(sql.ErrNoRows)

	err := service.HandlePaymentWebhook(&models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_missing",
		Status:            "paid",
		Signature:         signWebhook("cs_missing", "paid"),
	}, "203.0.113.9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_Ownership(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	owner := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(bookingID).
		WillReturnRows(webhookBookingRow(t, bookingID, owner, "cs_1",
			models.BookingStatusConfirmed, models.PaymentStatusPaid, pickup))

	_, err := service.GetBooking(bookingID, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_PastPickup(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	userID := uuid.New()
	pickup := time.Now().AddDate(0, 0, -1)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(bookingID).
		WillReturnRows(webhookBookingRow(t, bookingID, userID, "cs_1",
			models.BookingStatusConfirmed, models.PaymentStatusPaid, pickup))

	_, err := service.CancelBooking(bookingID, userID, "too late", "203.0.113.9", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer be cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_Success(t *testing.T) {
	service, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	bookingID := uuid.New()
	userID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 14)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(bookingID).
		WillReturnRows(webhookBookingRow(t, bookingID, userID, "cs_1",
			models.BookingStatusConfirmed, models.PaymentStatusPaid, pickup))

	mock.ExpectExec("UPDATE bookings").
		WithArgs(bookingID, "plans changed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(bookingID).
		WillReturnRows(webhookBookingRow(t, bookingID, userID, "cs_1",
			models.BookingStatusCancelled, models.PaymentStatusPaid, pickup))

	booking, err := service.CancelBooking(bookingID, userID, "plans changed", "203.0.113.9", "test")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
