package database

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

var bookingTestColumns = []string{
	"id", "booking_reference", "user_id",
	"vehicle_id", "vehicle_name", "vehicle_image_url",
	"pickup_date", "return_date",
	"pickup_type", "pickup_location", "delivery_city", "delivery_location_id",
	"delivery_fee", "delivery_time_slot",
	"is_student", "pricing", "total_amount", "drivers",
	"status", "payment_status", "checkout_session_id", "payment_reference",
	"confirmed_at", "cancelled_at", "created_at", "updated_at",
}

func testPricingJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(models.BookingTotal{
		RentalDays:  7,
		RentalType:  models.RentalTypeWeekly,
		BaseRate:    280,
		BaseCost:    280,
		Subtotal:    280,
		TaxAmount:   23.10,
		TotalAmount: 303.10,
		Currency:    "usd",
	})
	require.NoError(t, err)
	return data
}

func testDriversJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(models.BookingDrivers{
		Primary: models.DriverData{FirstName: "Jordan", LastName: "Avery"},
	})
	require.NoError(t, err)
	return data
}

func testBookingRow(t *testing.T, bookingID, userID uuid.UUID) *sqlmock.Rows {
	t.Helper()
	pickup := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	ret := pickup.AddDate(0, 0, 7)

	return sqlmock.NewRows(bookingTestColumns).AddRow(
		bookingID, "4AR-7KQ2M9", userID,
		uuid.New(), "Toyota Camry", nil,
		pickup, ret,
		"store", "4A Rental - 1200 N Elm St, Denton, TX", nil, nil,
		0.0, nil,
		false, testPricingJSON(t), 303.10, testDriversJSON(t),
		"confirmed", "paid", "cs_test_123", "pay_ref_1",
		sqlmockTime(), nil, sqlmockTime(), sqlmockTime(),
	)
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db, sqlx: sqlx.NewDb(db, "sqlmock")}
	repo := NewBookingRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		pickup := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
		booking := &models.Booking{
			BookingReference: "4AR-7KQ2M9",
			UserID:           uuid.New(),
			VehicleID:        uuid.New(),
			VehicleName:      "Toyota Camry",
			PickupDate:       pickup,
			ReturnDate:       pickup.AddDate(0, 0, 7),
			PickupType:       "store",
			PickupLocation:   "4A Rental - 1200 N Elm St, Denton, TX",
			TotalAmount:      303.10,
			Status:           models.BookingStatusPendingPayment,
			PaymentStatus:    models.PaymentStatusPending,
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(sqlmockTime(), sqlmockTime()))

		err := repo.Create(booking)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, booking.ID)
		assert.Equal(t, sqlmockTime(), booking.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(&models.Booking{UserID: uuid.New(), VehicleID: uuid.New()})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db, sqlx: sqlx.NewDb(db, "sqlmock")}
	repo := NewBookingRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		bookingID := uuid.New()
		userID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(testBookingRow(t, bookingID, userID))

		booking, err := repo.GetByID(bookingID)
		require.NoError(t, err)
		assert.Equal(t, bookingID, booking.ID)
		assert.Equal(t, "4AR-7KQ2M9", booking.BookingReference)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
		assert.Equal(t, 7, booking.Pricing.RentalDays)
		assert.Equal(t, "Jordan", booking.Drivers.Primary.FirstName)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_GetByCheckoutSessionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db, sqlx: sqlx.NewDb(db, "sqlmock")}
	repo := NewBookingRepository(mockDB)

	bookingID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs("cs_test_123").
		WillReturnRows(testBookingRow(t, bookingID, userID))

	booking, err := repo.GetByCheckoutSessionID("cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", booking.CheckoutSessionID.String)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetBlockingDatesByVehicle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db, sqlx: sqlx.NewDb(db, "sqlmock")}
	repo := NewBookingRepository(mockDB)

	vehicleID := uuid.New()
	pickup := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "booking_reference", "pickup_date", "return_date"}).
		AddRow(uuid.New(), "4AR-AAAAAA", pickup, pickup.AddDate(0, 0, 7)).
		AddRow(uuid.New(), "4AR-BBBBBB", pickup.AddDate(0, 0, 20), pickup.AddDate(0, 0, 23))

	mock.ExpectQuery(`SELECT id, booking_reference, pickup_date, return_date`).
		WithArgs(vehicleID).
		WillReturnRows(rows)

	bookings, err := repo.GetBlockingDatesByVehicle(vehicleID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "4AR-AAAAAA", bookings[0].BookingReference)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdatePaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db, sqlx: sqlx.NewDb(db, "sqlmock")}
	repo := NewBookingRepository(mockDB)

	t.Run("Paid", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, models.PaymentStatusPaid, "pay_ref_1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePaymentStatus(bookingID, models.PaymentStatusPaid, "pay_ref_1")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, models.PaymentStatusFailed, "").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePaymentStatus(bookingID, models.PaymentStatusFailed, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "booking not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Cancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db, sqlx: sqlx.NewDb(db, "sqlmock")}
	repo := NewBookingRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "plans changed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Cancel(bookingID, "plans changed")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Cancel(bookingID, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "booking not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "").
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Cancel(bookingID, "")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
