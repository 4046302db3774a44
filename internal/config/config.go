package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (config cache + session driver-info store)
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Checkout gateway configuration
	Checkout CheckoutConfig

	// Booking policy defaults (used when the booking_config table has no row)
	Booking BookingConfig

	// Wizard session configuration
	Wizard WizardConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL for the cached booking_config row
	ConfigCacheTTL time.Duration
	// TTL for the session-scoped driver-info snapshot
	DriverInfoTTL time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CheckoutConfig holds checkout-session gateway configuration
type CheckoutConfig struct {
	Environment string // "sandbox" or "production"
	BaseURL     string // Checkout session creation endpoint
	APIKey      string // Bearer credential (SECRET - never expose to client)
	ReturnURL   string // URL the gateway redirects to after payment
	WebhookURL  string // Server webhook URL for payment notifications
}

// BookingConfig holds fallback booking policy values
type BookingConfig struct {
	MinLeadTimeHours       int
	MaxAdvanceDays         int
	MinRentalDays          int
	AdditionalDriverFee    float64
	StudentDiscountPercent float64
	StorePickupAddress     string
}

// WizardConfig holds wizard session lifecycle configuration
type WizardConfig struct {
	SessionTTL    time.Duration // Idle sessions are swept after this
	SweepInterval time.Duration
}

// RateLimitConfig holds submission rate limiting configuration
type RateLimitConfig struct {
	SubmissionsPerMinute int
	SubmissionBurst      int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			ConfigCacheTTL: time.Duration(getEnvAsInt("CONFIG_CACHE_TTL_SECONDS", 300)) * time.Second,
			DriverInfoTTL:  time.Duration(getEnvAsInt("DRIVER_INFO_TTL_SECONDS", 86400)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		Checkout: CheckoutConfig{
			Environment: getEnv("CHECKOUT_ENVIRONMENT", "sandbox"),
			BaseURL:     getEnv("CHECKOUT_BASE_URL", ""),
			APIKey:      getEnv("CHECKOUT_API_KEY", ""),
			ReturnURL:   getEnv("CHECKOUT_RETURN_URL", ""),
			WebhookURL:  getEnv("CHECKOUT_WEBHOOK_URL", ""),
		},
		Booking: BookingConfig{
			MinLeadTimeHours:       getEnvAsInt("BOOKING_MIN_LEAD_TIME_HOURS", 24),
			MaxAdvanceDays:         getEnvAsInt("BOOKING_MAX_ADVANCE_DAYS", 180),
			MinRentalDays:          getEnvAsInt("BOOKING_MIN_RENTAL_DAYS", 1),
			AdditionalDriverFee:    getEnvAsFloat("BOOKING_ADDITIONAL_DRIVER_FEE", 10),
			StudentDiscountPercent: getEnvAsFloat("BOOKING_STUDENT_DISCOUNT_PERCENT", 10),
			StorePickupAddress:     getEnv("BOOKING_STORE_PICKUP_ADDRESS", "4A Rental - 1200 N Elm St, Denton, TX"),
		},
		Wizard: WizardConfig{
			SessionTTL:    time.Duration(getEnvAsInt("WIZARD_SESSION_TTL_MINUTES", 60)) * time.Minute,
			SweepInterval: time.Duration(getEnvAsInt("WIZARD_SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			SubmissionsPerMinute: getEnvAsInt("RATE_LIMIT_SUBMISSIONS_PER_MINUTE", 5),
			SubmissionBurst:      getEnvAsInt("RATE_LIMIT_SUBMISSION_BURST", 2),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	// Validate checkout gateway configuration only in production mode
	if c.Checkout.Environment == "production" {
		if c.Checkout.BaseURL == "" {
			return fmt.Errorf("CHECKOUT_BASE_URL is required in production mode")
		}
		if c.Checkout.APIKey == "" {
			return fmt.Errorf("CHECKOUT_API_KEY is required in production mode")
		}
	}

	if c.Booking.MinRentalDays < 1 {
		return fmt.Errorf("BOOKING_MIN_RENTAL_DAYS must be at least 1")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default: %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
