package database

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// mockDatabase adapts a sqlmock connection to the DB interface. Get and
// Select go through sqlx so struct scanning works the same way it does
// in production.
type mockDatabase struct {
	db   *sql.DB
	sqlx *sqlx.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.sqlx.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.sqlx.Select(dest, query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

func sqlmockTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testProfileRequest() *models.UpdateProfileRequest {
	return &models.UpdateProfileRequest{
		FirstName:     "Jordan",
		LastName:      "Avery",
		Phone:         "9405551234",
		DateOfBirth:   "1990-03-15",
		LicenseNumber: "12345678",
		LicenseState:  "TX",
		Address:       "800 W Hickory St",
		City:          "Denton",
		ZipCode:       "76201",
	}
}
