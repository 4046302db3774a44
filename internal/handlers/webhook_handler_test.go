package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourarental/rental-booking-backend/internal/config"
	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/internal/services"
	"github.com/fourarental/rental-booking-backend/pkg/checkout"
)

const webhookTestAPIKey = "webhook-test-key"

func setupWebhookTest(t *testing.T) (*WebhookHandler, sqlmock.Sqlmock, func()) {
	db, mock := setupTestDB(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway := checkout.NewClient(&config.CheckoutConfig{APIKey: webhookTestAPIKey}, logger)
	bookingService := services.NewBookingService(
		database.NewBookingRepository(db),
		gateway,
		services.NewAuditService(db),
		logger,
	)

	cleanup := func() {
		db.Close()
	}

	return NewWebhookHandler(bookingService), mock, cleanup
}

func webhookTestSignature(sessionID, status string) string {
	mac := hmac.New(sha512.New, []byte(webhookTestAPIKey))
	fmt.Fprintf(mac, "%s|%s", sessionID, status)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(handler *WebhookHandler, req models.PaymentWebhookRequest) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.PaymentWebhook(c)
	return w
}

func TestPaymentWebhook_InvalidSignature(t *testing.T) {
	handler, mock, cleanup := setupWebhookTest(t)
	defer cleanup()

	w := postWebhook(handler, models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "paid",
		Signature:         "forged",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_MissingFields(t *testing.T) {
	handler, _, cleanup := setupWebhookTest(t)
	defer cleanup()

	// Status is required by binding
	w := postWebhook(handler, models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentWebhook_Success(t *testing.T) {
	handler, mock, cleanup := setupWebhookTest(t)
	defer cleanup()

	bookingID := uuid.New()
	pickup := time.Now().AddDate(0, 0, 7)
	pricing, err := json.Marshal(models.BookingTotal{RentalDays: 3, TotalAmount: 150})
	require.NoError(t, err)
	drivers, err := json.Marshal(models.BookingDrivers{})
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("cs_1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_reference", "user_id",
			"vehicle_id", "vehicle_name", "vehicle_image_url",
			"pickup_date", "return_date",
			"pickup_type", "pickup_location", "delivery_city", "delivery_location_id",
			"delivery_fee", "delivery_time_slot",
			"is_student", "pricing", "total_amount", "drivers",
			"status", "payment_status", "checkout_session_id", "payment_reference",
			"confirmed_at", "cancelled_at", "created_at", "updated_at",
		}).AddRow(
			bookingID, "4AR-7KQ2M9", uuid.New(),
			uuid.New(), "Toyota Camry", nil,
			pickup, pickup.AddDate(0, 0, 3),
			"store", "4A Rental - 1200 N Elm St, Denton, TX", nil, nil,
			0.0, nil,
			false, pricing, 150.0, drivers,
			"pending_payment", "pending", "cs_1", nil,
			nil, nil, now, now,
		))

	mock.ExpectExec("UPDATE bookings").
		WithArgs(bookingID, models.PaymentStatusPaid, "pay_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := postWebhook(handler, models.PaymentWebhookRequest{
		CheckoutSessionID: "cs_1",
		Status:            "paid",
		PaymentReference:  "pay_1",
		Signature:         webhookTestSignature("cs_1", "paid"),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
