package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// UserRepository handles user profile database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser creates a new customer account row
func (r *UserRepository) CreateUser(email string) (*models.User, error) {
	user := &models.User{
		ID:               uuid.New(),
		Email:            email,
		Status:           "active",
		ProfileCompleted: false,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	query := `
		INSERT INTO users (
			id, email, status, profile_completed, created_at, updated_at
		) VALUES ($1, $2, $3::user_status, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Email,
		user.Status,
		user.ProfileCompleted,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, phone, first_name, last_name, date_of_birth,
			   license_number, license_state, address, city, zip_code,
			   is_student, student_id_url, profile_completed, status,
			   last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.Get(user, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, phone, first_name, last_name, date_of_birth,
			   license_number, license_state, address, city, zip_code,
			   is_student, student_id_url, profile_completed, status,
			   last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}
	err := r.db.Get(user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the profile fields supplied in the request.
// Blank fields keep their stored values so the best-effort checkout sync
// never erases data the renter entered elsewhere.
func (r *UserRepository) UpdateProfile(userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET first_name     = COALESCE(NULLIF($2, ''), first_name),
			last_name      = COALESCE(NULLIF($3, ''), last_name),
			phone          = COALESCE(NULLIF($4, ''), phone),
			date_of_birth  = COALESCE(NULLIF($5, ''), date_of_birth),
			license_number = COALESCE(NULLIF($6, ''), license_number),
			license_state  = COALESCE(NULLIF($7, ''), license_state),
			address        = COALESCE(NULLIF($8, ''), address),
			city           = COALESCE(NULLIF($9, ''), city),
			zip_code       = COALESCE(NULLIF($10, ''), zip_code),
			profile_completed = (
				COALESCE(NULLIF($2, ''), first_name) IS NOT NULL AND
				COALESCE(NULLIF($3, ''), last_name) IS NOT NULL AND
				COALESCE(NULLIF($6, ''), license_number) IS NOT NULL
			),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(
		query,
		userID,
		req.FirstName, req.LastName, req.Phone, req.DateOfBirth,
		req.LicenseNumber, req.LicenseState, req.Address, req.City, req.ZipCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("user not found")
	}

	return r.GetUserByID(userID)
}

// UpdateLastLogin records a successful token issuance
func (r *UserRepository) UpdateLastLogin(userID uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`

	_, err := r.db.Exec(query, userID)
	return err
}
